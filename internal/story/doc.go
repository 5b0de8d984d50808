// Package story defines the remote CMS domain model mirrored by the local
// cache: the Story entity, its nested media/audio/localization descriptors,
// and the ordered editorial workflow stages a story moves through from
// creation to publication.
//
// Values in this package are plain data. Persistence, network fetch, and
// offline reassembly live in internal/cache and internal/services/cms.
package story
