package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/automerge/automerge-go"
	"github.com/tim-beatham/waterq/pkg/lib"
	logging "github.com/tim-beatham/waterq/pkg/log"
	"github.com/tim-beatham/waterq/pkg/reading"
)

const (
	documentsKey = "documents"
	idKey        = "_id"
)

var ErrCorruptDocument = errors.New("document is not a reading")

// AutomergeCollection stores each reading as a map inside a single automerge
// document. Missing values are absent keys so documents stay schema-less.
type AutomergeCollection struct {
	Name  string
	lock  sync.RWMutex
	doc   *automerge.Doc
	order []string
	ids   lib.IdGenerator
}

func encode(id string, r *reading.Reading) map[string]any {
	document := map[string]any{
		idKey:             id,
		reading.TIMESTAMP: r.Timestamp,
	}

	for _, field := range reading.NumericFields {
		if value := r.Get(field); value != nil {
			document[string(field)] = *value
		}
	}

	return document
}

func decode(value *automerge.Value) (*reading.Reading, error) {
	if value.Kind() != automerge.KindMap {
		return nil, ErrCorruptDocument
	}

	document := value.Map()
	ts, err := document.Get(reading.TIMESTAMP)

	if err != nil {
		return nil, err
	}

	if ts.Kind() != automerge.KindTime {
		return nil, fmt.Errorf("%w: missing timestamp", ErrCorruptDocument)
	}

	r := &reading.Reading{Timestamp: ts.Time().UTC()}

	for _, field := range reading.NumericFields {
		fieldValue, err := document.Get(string(field))

		if err != nil {
			return nil, err
		}

		if fieldValue.Kind() == automerge.KindFloat64 {
			r.Set(field, reading.Float(fieldValue.Float64()))
		}
	}

	return r, nil
}

func (c *AutomergeCollection) get(id string) (*reading.Reading, error) {
	value, err := c.doc.Path(documentsKey).Map().Get(id)

	if err != nil {
		return nil, err
	}

	return decode(value)
}

// scan returns the ids and readings matching the filter in insertion order
func (c *AutomergeCollection) scan(filter *Filter) ([]string, []reading.Reading, error) {
	ids := make([]string, 0)
	readings := make([]reading.Reading, 0)

	for _, id := range c.order {
		r, err := c.get(id)

		if err != nil {
			return nil, nil, err
		}

		if filter.Matches(r) {
			ids = append(ids, id)
			readings = append(readings, *r)
		}
	}

	return ids, readings, nil
}

func (c *AutomergeCollection) InsertMany(readings []reading.Reading) ([]string, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	documents := c.doc.Path(documentsKey).Map()
	ids := make([]string, 0, len(readings))

	for index := range readings {
		id, err := c.ids.GetId()

		if err != nil {
			return nil, err
		}

		err = documents.Set(id, encode(id, &readings[index]))

		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return ids, nil
	}

	_, err := c.doc.Commit(fmt.Sprintf("insert %d readings", len(ids)))

	if err != nil {
		return nil, err
	}

	c.order = append(c.order, ids...)
	logging.Log.WriteDebugf("inserted %d documents into %s", len(ids), c.Name)
	return ids, nil
}

func (c *AutomergeCollection) DeleteMany(filter *Filter) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	ids, _, err := c.scan(filter)

	if err != nil {
		return 0, err
	}

	if len(ids) == 0 {
		return 0, nil
	}

	documents := c.doc.Path(documentsKey).Map()
	removed := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		if err := documents.Delete(id); err != nil {
			return 0, err
		}

		removed[id] = struct{}{}
	}

	_, err = c.doc.Commit(fmt.Sprintf("delete %d readings", len(ids)))

	if err != nil {
		return 0, err
	}

	c.order = lib.Filter(c.order, func(id string) bool {
		_, ok := removed[id]
		return !ok
	})

	logging.Log.WriteDebugf("deleted %d documents from %s", len(ids), c.Name)
	return len(ids), nil
}

func (c *AutomergeCollection) Count(filter *Filter) (int, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if filter == nil {
		return len(c.order), nil
	}

	ids, _, err := c.scan(filter)

	if err != nil {
		return 0, err
	}

	return len(ids), nil
}

func (c *AutomergeCollection) Find(filter *Filter, skip, limit int) ([]reading.Reading, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	_, readings, err := c.scan(filter)

	if err != nil {
		return nil, err
	}

	return lib.Page(readings, skip, limit), nil
}

func (c *AutomergeCollection) FindOne(filter *Filter) (*reading.Reading, error) {
	readings, err := c.Find(filter, 0, 1)

	if err != nil || len(readings) == 0 {
		return nil, err
	}

	return &readings[0], nil
}

func (c *AutomergeCollection) All() ([]reading.Reading, error) {
	return c.Find(nil, 0, 0)
}

// NewAutomergeCollection: creates an empty collection with the given name
func NewAutomergeCollection(name string, ids lib.IdGenerator) *AutomergeCollection {
	return &AutomergeCollection{
		Name:  name,
		doc:   automerge.New(),
		order: make([]string, 0),
		ids:   ids,
	}
}
