package entity

// RawDocument is one uploaded file. The engine never mutates it.
type RawDocument struct {
	Filename     string
	Content      []byte
	DeclaredMIME string
}
