package entity

// DocumentEntity is a named container of ordered documents representing one
// record independent of domain type. Field order is preserved from insertion
// and carried through JSON encoding.
type DocumentEntity struct {
	name      string
	documents []Document
}

// Of creates a new entity with the given name and initial documents
func Of(name string, documents ...Document) *DocumentEntity {
	e := &DocumentEntity{name: name}
	e.documents = append(e.documents, documents...)
	return e
}

// Name returns the entity name
func (e *DocumentEntity) Name() string {
	return e.name
}

// Add appends a field, replacing any existing document with the same name
// in place
func (e *DocumentEntity) Add(name string, value any) {
	e.AddDocument(Document{Name: name, Value: value})
}

// AddDocument appends a document, replacing any existing document with the
// same name in place
func (e *DocumentEntity) AddDocument(doc Document) {
	for i := range e.documents {
		if e.documents[i].Name == doc.Name {
			e.documents[i] = doc
			return
		}
	}
	e.documents = append(e.documents, doc)
}

// Find returns the document with the given name
func (e *DocumentEntity) Find(name string) (Document, bool) {
	for _, doc := range e.documents {
		if doc.Name == name {
			return doc, true
		}
	}
	return Document{}, false
}

// Remove deletes the document with the given name, reporting whether it
// was present
func (e *DocumentEntity) Remove(name string) bool {
	for i, doc := range e.documents {
		if doc.Name == name {
			e.documents = append(e.documents[:i], e.documents[i+1:]...)
			return true
		}
	}
	return false
}

// Documents returns a copy of the ordered field list
func (e *DocumentEntity) Documents() []Document {
	out := make([]Document, len(e.documents))
	copy(out, e.documents)
	return out
}

// Len returns the number of documents
func (e *DocumentEntity) Len() int {
	return len(e.documents)
}

// IsEmpty reports whether the entity has no documents
func (e *DocumentEntity) IsEmpty() bool {
	return len(e.documents) == 0
}

// Copy returns a deep-enough copy: the document slice is duplicated, values
// are shared (values are treated as immutable by the framework)
func (e *DocumentEntity) Copy() *DocumentEntity {
	return Of(e.name, e.documents...)
}
