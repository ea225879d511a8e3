package mathview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/sanitize"
)

// JSONRequest is one line of input in JSON mode.
//
//	{"type":"input","text":"$x^2$"}
//	{"type":"set","key":"speech_style","value":"SimpleSpeak"}
//	{"type":"key","event":{"key":"ArrowRight","code":39}}
//	{"type":"rules","name":"ClearSpeak_Rules.yaml","contents":"..."}
//
// A key event without a code is resolved from its name.
type JSONRequest struct {
	Type     string           `json:"type"`
	Text     string           `json:"text,omitempty"`
	Key      string           `json:"key,omitempty"`
	Value    string           `json:"value,omitempty"`
	Event    *domain.KeyEvent `json:"event,omitempty"`
	Name     string           `json:"name,omitempty"`
	Contents string           `json:"contents,omitempty"`
}

// JSONResponse is written as one line for every request and every rule file
// delivered on Runner.Rules.
type JSONResponse struct {
	Result  *domain.Result   `json:"result,omitempty"`
	Session *domain.Snapshot `json:"session,omitempty"`
	Spoken  []string         `json:"spoken,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func (r *Runner) handleJSON(ctx context.Context, c *Controller, line string) error {
	if line == "" {
		return nil
	}
	var req JSONRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return r.encode(JSONResponse{Error: fmt.Sprintf("invalid request: %v", err)})
	}
	if req.Type == "quit" {
		return errQuit
	}

	cmd, err := req.command()
	if err != nil {
		return r.encode(JSONResponse{Error: err.Error()})
	}
	res, err := c.Dispatch(ctx, cmd)
	if err != nil {
		return err
	}
	return r.respond(c, res)
}

func (req JSONRequest) command() (domain.Command, error) {
	switch req.Type {
	case "input":
		text, err := sanitize.Input(req.Text)
		if err != nil {
			return nil, err
		}
		return domain.SubmitInput{Text: text}, nil
	case "set":
		return domain.SetPreference{Key: domain.PreferenceKey(req.Key), Value: req.Value}, nil
	case "key":
		if req.Event == nil {
			return nil, fmt.Errorf("key request needs an event")
		}
		ev := *req.Event
		if ev.Code == 0 {
			named := domain.KeyFromName(ev.Key)
			ev.Key, ev.Code = named.Key, named.Code
		}
		return domain.KeyPress{Event: ev}, nil
	case "rules":
		if req.Name == "" {
			return nil, fmt.Errorf("rules request needs a name")
		}
		return domain.RuleFileLoaded{Name: req.Name, Contents: req.Contents}, nil
	}
	return nil, fmt.Errorf("unknown request type %q", req.Type)
}

func (r *Runner) respond(c *Controller, res domain.Result) error {
	snap := c.Snapshot()
	out := JSONResponse{Result: &res, Session: &snap}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	if r.Display != nil {
		out.Spoken = r.Display.Drain()
	}
	return r.encode(out)
}

func (r *Runner) encode(v JSONResponse) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.Output, "%s\n", data)
	return err
}
