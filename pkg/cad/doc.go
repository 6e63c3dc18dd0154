// Package cad defines the object model of a facet scene: typed primitive
// and sketch objects with transforms and dimensional metadata. Objects are
// self-describing and carry no references to each other; a scene is a flat,
// ordered slice of them.
package cad
