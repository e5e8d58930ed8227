package entity

import "context"

// SelectQuery describes a read over one entity name. An empty Fields list
// selects every document; Skip and Limit apply after condition filtering in
// encounter order.
type SelectQuery struct {
	Entity     string
	Fields     []string
	Conditions []Condition
	Skip       int
	Limit      int
}

// DeleteQuery describes a conditional delete over one entity name. An empty
// condition list deletes every record of the entity.
type DeleteQuery struct {
	Entity     string
	Conditions []Condition
}

// Matches reports whether an entity satisfies every condition of the query
func (q SelectQuery) Matches(e *DocumentEntity) (bool, error) {
	return matchAll(q.Conditions, e)
}

// Matches reports whether an entity satisfies every condition of the query
func (q DeleteQuery) Matches(e *DocumentEntity) (bool, error) {
	return matchAll(q.Conditions, e)
}

func matchAll(conditions []Condition, e *DocumentEntity) (bool, error) {
	for _, c := range conditions {
		ok, err := c.Matches(e)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Manager is the store driver contract. Implementations persist generic
// entities; they never see domain objects. All calls block until the store
// answers and honor context cancellation.
type Manager interface {
	// Insert persists a new entity and returns the stored representation.
	// Inserting an entity whose identifier already exists fails with
	// errors.ErrEntityExists.
	Insert(ctx context.Context, e *DocumentEntity) (*DocumentEntity, error)

	// Update persists an entity, creating or replacing the stored record
	Update(ctx context.Context, e *DocumentEntity) (*DocumentEntity, error)

	// Delete removes every record matching the query
	Delete(ctx context.Context, q DeleteQuery) error

	// Select returns every record matching the query
	Select(ctx context.Context, q SelectQuery) ([]*DocumentEntity, error)

	// Close releases driver resources
	Close() error
}
