package docstore

import (
	"context"
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Query reads the document and returns every value matched by the JSONPath
// selector, e.g. "$.user.name" or "$.alarms[*].time".
func (s *FileStore) Query(ctx context.Context, name string, scope Scope, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("docstore: invalid jsonpath %q: %w", selector, err)
	}

	doc, err := s.Read(ctx, name, scope)
	if err != nil {
		return nil, err
	}
	return x.Get(doc), nil
}
