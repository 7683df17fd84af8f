package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/lucky-aeon/agentx/mcp-manager/errs"
	"github.com/lucky-aeon/agentx/mcp-manager/merge"
	"github.com/lucky-aeon/agentx/mcp-manager/types"
	"github.com/lucky-aeon/agentx/mcp-manager/utils"
	"github.com/lucky-aeon/agentx/mcp-manager/xlog"
)

// Publisher writes composites to the configured target files.
//
// Every publish replaces the whole target file. Keys other than mcpServers
// that the consuming application keeps in that file are lost.
type Publisher struct {
	targets []types.Target
	xl      xlog.Logger
}

func New(targets []types.Target, xl xlog.Logger) *Publisher {
	if xl == nil {
		xl = xlog.NewLogger("[Publisher]")
	}
	return &Publisher{targets: append([]types.Target(nil), targets...), xl: xl}
}

// Targets returns the configured targets, primary first.
func (p *Publisher) Targets() []types.Target {
	return append([]types.Target(nil), p.targets...)
}

func (p *Publisher) lookup(name string) (types.Target, bool) {
	for _, t := range p.targets {
		if t.Name == name {
			return t, true
		}
	}
	return types.Target{}, false
}

// Publish writes composite to each named target, or to every target when no
// name is given. A failing target does not stop the others.
func (p *Publisher) Publish(composite *merge.Composite, names ...string) *Result {
	res := &Result{}
	if composite == nil {
		composite = merge.NewComposite()
	}
	data, err := composite.Indent()
	if err != nil {
		for _, t := range p.resolve(names) {
			res.add(t, errs.InvalidFormat("publish", t.Name, err))
		}
		return res
	}

	for _, t := range p.resolve(names) {
		if t.Path == "" {
			res.add(t, errs.NotFound("publish", t.Name, errors.New("unknown target")))
			continue
		}
		res.add(t, write(t, data))
	}

	for _, o := range res.Outcomes {
		if o.Err != nil {
			p.xl.Errorf("publish to %s failed: %v", o.Target.Name, o.Err)
		} else {
			p.xl.Infof("published %d servers to %s (%s)", composite.Len(), o.Target.Name, o.Target.Path)
		}
	}
	return res
}

// resolve keeps the configured order for an empty selection and the caller's
// order otherwise. Unknown names come back with an empty path.
func (p *Publisher) resolve(names []string) []types.Target {
	if len(names) == 0 {
		return p.Targets()
	}
	seen := make(map[string]bool, len(names))
	out := make([]types.Target, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		t, ok := p.lookup(name)
		if !ok {
			t = types.Target{Name: name}
		}
		out = append(out, t)
	}
	return out
}

func write(t types.Target, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(t.Path), 0o755); err != nil {
		return errs.IO("publish", t.Name, err)
	}
	if err := utils.WriteFileAtomic(t.Path, data, 0o644); err != nil {
		return errs.IO("publish", t.Name, err)
	}
	return nil
}

type Outcome struct {
	Target types.Target
	Err    error
}

// Result holds one outcome per requested target, in request order.
type Result struct {
	Outcomes []Outcome
}

func (r *Result) add(t types.Target, err error) {
	r.Outcomes = append(r.Outcomes, Outcome{Target: t, Err: err})
}

func (r *Result) Succeeded() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Err == nil {
			names = append(names, o.Target.Name)
		}
	}
	return names
}

func (r *Result) Failed() []string {
	var names []string
	for _, o := range r.Outcomes {
		if o.Err != nil {
			names = append(names, o.Target.Name)
		}
	}
	return names
}

// OK reports whether at least one target was requested and all of them succeeded.
func (r *Result) OK() bool {
	return len(r.Outcomes) > 0 && len(r.Failed()) == 0
}

// Partial reports a mix of succeeded and failed targets.
func (r *Result) Partial() bool {
	return len(r.Succeeded()) > 0 && len(r.Failed()) > 0
}

// Err combines the failures, or returns nil when there are none.
func (r *Result) Err() error {
	var result *multierror.Error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", o.Target.Name, o.Err))
		}
	}
	return result.ErrorOrNil()
}

func (r *Result) Report() []types.TargetOutcome {
	report := make([]types.TargetOutcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		out := types.TargetOutcome{Target: o.Target.Name, Path: o.Target.Path, OK: o.Err == nil}
		if o.Err != nil {
			out.Error = o.Err.Error()
		}
		report = append(report, out)
	}
	return report
}
