package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/harmock/pkg/webarchive"
)

// delayEnv is the environment delay expressions are evaluated against.
type delayEnv struct {
	Recorded float64             `expr:"recorded"`
	Method   string              `expr:"method"`
	URL      string              `expr:"url"`
	Query    string              `expr:"query"`
	Header   func(string) string `expr:"header"`
}

// CompileDelay compiles a delay expression into a webarchive.DelayFunc.
//
// The expression sees the recorded delay in milliseconds as recorded, the
// live request as method, url and query, and header(name) for request
// headers. It must evaluate to a number of milliseconds:
//
//	recorded / 2
//	method == "POST" ? 0 : recorded
//	header("X-Slow") != "" ? 2000 : 0
//
// Evaluation errors fall back to the recorded delay.
func CompileDelay(expression string) (webarchive.DelayFunc, error) {
	program, err := expr.Compile(expression, expr.Env(delayEnv{}), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	return func(recorded time.Duration, req *http.Request) time.Duration {
		ms, err := evalDelay(program, recorded, req)
		if err != nil {
			return recorded
		}
		return time.Duration(ms * float64(time.Millisecond))
	}, nil
}

func evalDelay(program *vm.Program, recorded time.Duration, req *http.Request) (float64, error) {
	env := delayEnv{
		Recorded: float64(recorded) / float64(time.Millisecond),
		Header:   func(string) string { return "" },
	}
	if req != nil {
		env.Method = req.Method
		env.URL = req.URL.String()
		env.Query = req.URL.RawQuery
		env.Header = req.Header.Get
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return 0, err
	}
	ms, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("delay expression returned %T, want a number", out)
	}
	return ms, nil
}
