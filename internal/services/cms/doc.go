// Package cms talks to the remote content-management API. It converts the
// wire representation of stories into the domain model; everything cached
// locally flows through this conversion exactly once.
package cms
