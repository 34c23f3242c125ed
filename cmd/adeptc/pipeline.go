package main

import (
	"fmt"

	"adeptc/internal/alex"
	"adeptc/internal/aparse"
	"adeptc/internal/diag"
	"adeptc/internal/exec"
	"adeptc/internal/ir"
	"adeptc/internal/lower"
	"adeptc/internal/resolve"
	"adeptc/internal/sourcemap"
	"adeptc/internal/types"
)

// alexLex lexes src as file key 1, the only file this single-file demo
// driver ever registers with internal/sourcemap.
func alexLex(src string) ([]alex.Token, error) {
	return alex.Lex(sourcemap.Key(1), src)
}

// funcTask resolves and lowers a single function. It never suspends: the
// global signature table (funcs) is complete before any task is submitted.
// Execute is safe to re-enter: it does all of its work in one
// pass and never mutates fd itself, so a resumption just repeats a cheap
// resolve+lower rather than anything requiring an Anchor (spec.md §5
// "Idempotent resumption" — the simplest implementation of Executable is
// one whose single pass is already side-effect-free to repeat).
type funcTask struct {
	id        exec.TaskID
	fd        funcDecl
	m         *ir.Module
	funcs     map[string]*types.FuncHead
	funcTable *lower.FuncTable
	isC       bool
}

func (t *funcTask) ID() exec.TaskID { return t.id }

func (t *funcTask) Execute(*exec.ExecutionCtx) exec.Continuation {
	b, err := aparse.Flatten(t.fd.node)
	if err != nil {
		return exec.FailWith(fmt.Errorf("func %s: flatten: %w", t.fd.name, err))
	}

	sink := &diag.Sink{}
	fb := resolve.Resolve(b, 0, t.fd.params, t.fd.ret, t.funcs, nil, t.isC, sink)
	if sink.HasErrors() {
		return exec.FailWith(fmt.Errorf("func %s: %s", t.fd.name, sink.Errors()[0].Error()))
	}

	f := lower.Lower(t.m, fb, t.fd.name, len(t.fd.params), t.isC, t.funcTable)
	return exec.DoneWith(f)
}

// compileAdept lexes, parses, and lowers every top-level function in src
// into one ir.Module, running independent functions' resolve+lower passes
// through internal/exec rather than a bare loop, at the resolve/lower stage
// instead of at LLVM emission time.
func compileAdept(src string, opt Options) (*ir.Module, error) {
	toks, err := alexLex(src)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}
	prog, err := aparse.Parse(sourcemap.Key(1), toks)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	decls, err := collectFuncDecls(prog)
	if err != nil {
		return nil, err
	}

	funcs := make(map[string]*types.FuncHead, len(decls))
	for _, fd := range decls {
		funcs[fd.name] = fd.funcHead()
	}

	m := ir.NewModule("main")
	funcTable := lower.NewFuncTable()
	executor := exec.NewExecutor()
	for _, fd := range decls {
		executor.Submit(&funcTask{id: exec.TaskID(fd.name), fd: fd, m: m, funcs: funcs, funcTable: funcTable})
	}

	var outputs map[exec.TaskID]any
	var errs map[exec.TaskID]error
	if opt.Threads > 1 {
		outputs, errs = executor.RunParallel(opt.Threads)
	} else {
		outputs, errs = executor.Run()
	}
	for id, cause := range errs {
		return nil, fmt.Errorf("%s: %w", id, cause)
	}

	// ir.Module already records every *ir.Func lowered into it via
	// lower.Lower (see internal/ir.Module.NewFunc); outputs is only
	// consulted to confirm every submitted task actually completed.
	for _, fd := range decls {
		if _, ok := outputs[exec.TaskID(fd.name)]; !ok {
			return nil, fmt.Errorf("func %s: did not complete", fd.name)
		}
	}
	return m, nil
}
