package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"careerpilot/backend/internal/schemas"
)

const (
	fakeIntelJSON = `{
		"role_name": "Senior Backend Engineer",
		"job_description_summary": "Own the payments API. Scale it.",
		"required_experience": "5+ years building Go services.",
		"desirable_experience": "Kafka is a plus.",
		"hard_skills": ["Go", "PostgreSQL", "Kafka"],
		"soft_skills": ["Ownership"],
		"cultural_values": ["Candor"],
		"mission_critical": "Keep payments fast and correct."
	}`
	fakeResumeJSON = `{
		"full_name": "Ada Lovelace",
		"summary": "Backend engineer.",
		"links": [{"label": "GitHub", "url": "https://github.com/ada"}],
		"skills": ["Go", "PostgreSQL"],
		"experience": [{"company": "Initech", "role": "SWE", "duration": "2019 - 2024", "description": ["Built billing in Go"]}],
		"education": [{"institution": "MIT", "degree": "BS", "major": "CS", "graduation_year": "2019"}],
		"projects": []
	}`
	fakeStrategyJSON = `{
		"match_score": 72,
		"gap_analysis": {"missing_skills": ["Kafka"], "matching_skills": ["Go", "PostgreSQL"]},
		"tailoring_instructions": ["Lead with the billing work"],
		"suggested_summary": "Go engineer who ships payments. Ready to own the API."
	}`
)

// fakeProvider replays scripted replies per task name and records every task
// it receives.
type fakeProvider struct {
	mu      sync.Mutex
	replies map[string][]string
	err     error
	calls   []ExtractionTask
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{replies: make(map[string][]string)}
}

// defaultFakeProvider answers every task with a valid payload.
func defaultFakeProvider() *fakeProvider {
	p := newFakeProvider()
	p.always(schemas.JobIntelligence, fakeIntelJSON)
	p.always(schemas.MasterResume, fakeResumeJSON)
	p.always(schemas.TailoringStrategy, fakeStrategyJSON)
	return p
}

func (p *fakeProvider) script(name schemas.Name, replies ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies[string(name)] = replies
}

func (p *fakeProvider) always(name schemas.Name, reply string) {
	p.script(name, reply, reply, reply, reply, reply, reply, reply, reply)
}

func (p *fakeProvider) Extract(_ context.Context, task ExtractionTask) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, task)
	if p.err != nil {
		return nil, p.err
	}

	queue := p.replies[task.Name]
	if len(queue) == 0 {
		return nil, fmt.Errorf("fake provider: no reply scripted for %s", task.Name)
	}
	p.replies[task.Name] = queue[1:]
	return json.RawMessage(queue[0]), nil
}

func (p *fakeProvider) callCount(name schemas.Name) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, call := range p.calls {
		if call.Name == string(name) {
			n++
		}
	}
	return n
}

func (p *fakeProvider) lastPrompt(name schemas.Name) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.calls) - 1; i >= 0; i-- {
		if p.calls[i].Name == string(name) {
			return p.calls[i].Prompt
		}
	}
	return ""
}

// fakeEmbedder returns a fixed-size vector derived from the text length.
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), float32(strings.Count(text, " ")), 1}, nil
}

// fakeVectorStore keeps points in memory and scores by dot product.
type fakeVectorStore struct {
	mu        sync.Mutex
	points    map[string]VectorPoint
	searchErr error
	deletes   int
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{points: make(map[string]VectorPoint)}
}

func (f *fakeVectorStore) InitCollection(context.Context) error { return nil }

func (f *fakeVectorStore) Upsert(_ context.Context, points []VectorPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range points {
		f.points[p.ID] = p
	}
	return nil
}

func (f *fakeVectorStore) Search(_ context.Context, vector []float32, userID string, limit int) ([]SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	var results []SearchResult
	for _, p := range f.points {
		if p.UserID != userID {
			continue
		}
		var score float32
		for i := range vector {
			if i < len(p.Vector) {
				score += vector[i] * p.Vector[i]
			}
		}
		results = append(results, SearchResult{ID: p.ID, Score: score, Text: p.Text, Source: p.Source})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (f *fakeVectorStore) DeleteByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	for id, p := range f.points {
		if p.UserID == userID {
			delete(f.points, id)
		}
	}
	return nil
}

func (f *fakeVectorStore) count(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.points {
		if p.UserID == userID {
			n++
		}
	}
	return n
}
