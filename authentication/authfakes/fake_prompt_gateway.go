package authfakes

import (
	"context"
	"sync"

	"github.com/extensionhost/authbroker/authentication"
)

var _ authentication.PromptGateway = (*FakePromptGateway)(nil)

// FakePromptGateway answers prompts from a queue of scripted responses and
// records every call. An exhausted queue answers 0, the cancel/deny button.
type FakePromptGateway struct {
	// Err makes every call fail, simulating a broken prompt surface.
	Err error

	mu        sync.Mutex
	responses []int
	calls     []authentication.MessageBoxOptions
}

// NewFakePromptGateway creates a gateway with no scripted responses.
func NewFakePromptGateway() *FakePromptGateway {
	return &FakePromptGateway{}
}

func (g *FakePromptGateway) ShowMessageBox(_ context.Context, options authentication.MessageBoxOptions) (authentication.MessageBoxResult, error) {
	if g.Err != nil {
		return authentication.MessageBoxResult{}, g.Err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, options)
	response := 0
	if len(g.responses) > 0 {
		response = g.responses[0]
		g.responses = g.responses[1:]
	}
	return authentication.MessageBoxResult{Response: response}, nil
}

// EnqueueResponse scripts the button index for the next unanswered prompt.
func (g *FakePromptGateway) EnqueueResponse(response int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses = append(g.responses, response)
}

// Calls returns every prompt shown so far.
func (g *FakePromptGateway) Calls() []authentication.MessageBoxOptions {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]authentication.MessageBoxOptions(nil), g.calls...)
}

// CallCount reports how many prompts were shown.
func (g *FakePromptGateway) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}
