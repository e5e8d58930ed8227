package query

// Observer intercepts the parsed field/value stream before entity assembly.
// Implementations customize entity and field naming or value coercion as a
// cross-cutting concern; the parser consults the observer for every parsed
// entity name, field, and value.
type Observer interface {
	// FireEntity maps a parsed entity name
	FireEntity(name string) string
	// FireField maps a parsed field name within an entity
	FireField(entity, field string) string
	// FireValue maps a parsed value before it enters the entity
	FireValue(entity, field string, value any) any
}

type passthroughObserver struct{}

// NewObserver returns the default observer: an identity transform over
// names and values
func NewObserver() Observer {
	return passthroughObserver{}
}

func (passthroughObserver) FireEntity(name string) string { return name }

func (passthroughObserver) FireField(_, field string) string { return field }

func (passthroughObserver) FireValue(_, _ string, value any) any { return value }
