package query

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
	"github.com/tim-beatham/waterq/pkg/lib"
	"github.com/tim-beatham/waterq/pkg/reading"
	"github.com/tim-beatham/waterq/pkg/store"
)

// Querier queries a data store for the given data
// and returns data in the corresponding encoding
type Querier interface {
	Query(expression string) ([]byte, error)
}

// JmesQuerier: queries the stored readings in JMESPath syntax
type JmesQuerier struct {
	collection store.Collection
}

// QueryError: the expression could not be compiled or evaluated
type QueryError struct {
	msg string
}

func (m *QueryError) Error() string {
	return m.msg
}

// toDocuments converts the readings into generic JSON values so expressions
// address fields by their JSON names
func toDocuments(readings []reading.Reading) (interface{}, error) {
	bytes, err := json.Marshal(lib.Map(readings, reading.ToRecord))

	if err != nil {
		return nil, err
	}

	var documents interface{}
	err = json.Unmarshal(bytes, &documents)
	return documents, err
}

// Query: evaluates the expression against the list of stored readings
func (j *JmesQuerier) Query(expression string) ([]byte, error) {
	compiled, err := jmespath.Compile(expression)

	if err != nil {
		return nil, &QueryError{msg: fmt.Sprintf("invalid expression: %s", err.Error())}
	}

	readings, err := j.collection.All()

	if err != nil {
		return nil, err
	}

	documents, err := toDocuments(readings)

	if err != nil {
		return nil, err
	}

	result, err := compiled.Search(documents)

	if err != nil {
		return nil, &QueryError{msg: err.Error()}
	}

	bytes, err := json.Marshal(result)
	return bytes, err
}

func NewJmesQuerier(collection store.Collection) Querier {
	return &JmesQuerier{collection: collection}
}
