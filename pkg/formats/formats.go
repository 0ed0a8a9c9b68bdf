// Package formats provides readers and writers for mesh file formats.
//
// OBJ is the plain-text interchange format used for source and decrypted meshes.
// MSHX is the binary container for encrypted meshes; it carries the blend shapes
// and skinning data OBJ cannot express.
package formats
