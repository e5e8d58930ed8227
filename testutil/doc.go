// Package testutil provides shared fixtures for the framework's tests:
// sample domain types with their metadata declarations, a pre-populated
// registry, and an in-memory store manager. Fixtures cover flat types,
// embedded composition, scalar lists, and a discriminator-based inheritance
// hierarchy so converter, query, template, and graph tests exercise the
// same modeled world.
package testutil
