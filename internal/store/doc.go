// Package store provides durable storage for events, stories, assets,
// pricing, and mail templates on SQLite.
//
// The store plays the "event store" collaborator role for the ranking
// engine: ListEvents feeds the full event set to the pure ranking
// functions, which never touch the database themselves. Writes come from
// the admin surface and the periodic sweep.
//
// All timestamps are persisted as Unix milliseconds in UTC. Slides are
// serialized into a JSON column on the story row; a story is read and
// written as one unit, which matches how the editor and the player consume
// it.
package store
