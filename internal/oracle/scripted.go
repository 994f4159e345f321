package oracle

import "context"

// ScriptedResult is one canned outcome for a Scripted client.
type ScriptedResult struct {
	Content string
	Err     error
}

// Scripted replays canned responses in call order. It backs tests and
// offline dry runs; once the script runs out it keeps answering with an
// empty finding list.
type Scripted struct {
	Results []ScriptedResult
	Calls   int
}

// NewScripted creates a scripted client.
func NewScripted(results []ScriptedResult) *Scripted {
	return &Scripted{Results: results}
}

func (s *Scripted) Name() string { return "scripted" }

func (s *Scripted) Review(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	idx := s.Calls
	s.Calls++
	if idx < len(s.Results) {
		r := s.Results[idx]
		if r.Err != nil {
			return Response{}, r.Err
		}
		return Response{Content: r.Content}, nil
	}
	return Response{Content: "[]"}, nil
}
