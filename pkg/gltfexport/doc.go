// Package gltfexport serializes a scene of cad.Objects into a glTF 2.0
// document. Each object becomes one node, in input order, carrying its
// translation, rotation quaternion and scale, a mesh produced by a
// kernel.Realizer, a base-color material, and an extras block
// {cadType, cadName, cadMetadata} so CAD semantics survive the round trip
// through tools that know nothing about CAD primitives.
//
// Export never mutates its input and never aborts on a single bad object:
// such objects are skipped and reported in Result.Warnings.
package gltfexport
