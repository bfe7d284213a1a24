package interpreter

import (
	"fmt"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/runtime"
)

func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		return i.evaluateExpression(n.Expression, env, state)
	case *ast.VariableDeclaration:
		return i.evaluateVariableDeclaration(n, env, state)
	case *ast.FunctionDeclaration:
		return i.evaluateFunctionDeclaration(n, env, state)
	case *ast.BlockStatement:
		return i.evaluateBlock(n, env, state)
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, env, state)
	case *ast.WhileStatement:
		return i.evaluateWhileStatement(n, env, state)
	case *ast.ForStatement:
		return i.evaluateForStatement(n, env, state)
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n, env, state)
	case *ast.BreakStatement:
		return nil, breakSignal{node: n}
	case *ast.ContinueStatement:
		return nil, continueSignal{node: n}
	default:
		return nil, i.fail(state, node, ErrInternal, "unsupported statement type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateVariableDeclaration(decl *ast.VariableDeclaration, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	name := decl.Name.Name
	var value runtime.Value = runtime.Nil
	if decl.Value != nil {
		var err error
		if lit, ok := decl.Value.(*ast.FunctionLiteral); ok {
			value = i.makeFunction(name, lit, env, state)
		} else if value, err = i.evaluateExpression(decl.Value, env, state); err != nil {
			return nil, err
		}
	}
	if env.Declare(name, value, decl.IsConst) {
		i.logRedeclaration(name, decl, state)
	}
	return runtime.Nil, nil
}

func (i *Interpreter) evaluateFunctionDeclaration(decl *ast.FunctionDeclaration, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	name := decl.Name.Name
	// The closure captures env, which holds its own name, so the body can recurse.
	fn := i.makeFunction(name, decl.Function, env, state)
	if env.Declare(name, fn, false) {
		i.logRedeclaration(name, decl, state)
	}
	return runtime.Nil, nil
}

func (i *Interpreter) logRedeclaration(name string, node ast.Node, state *evalState) {
	pos := node.Span().Start
	i.logger.Warn("redeclared variable in the same scope",
		"name", name,
		"source", state.source,
		"line", pos.Line,
		"column", pos.Column)
}

func (i *Interpreter) makeFunction(name string, lit *ast.FunctionLiteral, env *runtime.Environment, state *evalState) *runtime.FunctionValue {
	return &runtime.FunctionValue{Name: name, Source: state.source, Declaration: lit, Closure: env}
}

func (i *Interpreter) evaluateBlock(block *ast.BlockStatement, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	return i.evaluateStatements(block.Statements, runtime.NewEnvironment(env), state)
}

func (i *Interpreter) evaluateStatements(stmts []ast.Statement, scope *runtime.Environment, state *evalState) (runtime.Value, error) {
	var result runtime.Value = runtime.Nil
	for _, stmt := range stmts {
		val, err := i.evaluateStatement(stmt, scope, state)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (i *Interpreter) evaluateIfStatement(stmt *ast.IfStatement, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	cond, err := i.evaluateExpression(stmt.Condition, env, state)
	if err != nil {
		return nil, err
	}
	if runtime.Truthy(cond) {
		return i.evaluateBlock(stmt.Then, env, state)
	}
	if stmt.Else != nil {
		return i.evaluateStatement(stmt.Else, env, state)
	}
	return runtime.Nil, nil
}

func (i *Interpreter) evaluateWhileStatement(loop *ast.WhileStatement, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	for {
		cond, err := i.evaluateExpression(loop.Condition, env, state)
		if err != nil {
			return nil, err
		}
		if !runtime.Truthy(cond) {
			return runtime.Nil, nil
		}
		if _, err := i.evaluateBlock(loop.Body, env, state); err != nil {
			switch err.(type) {
			case breakSignal:
				return runtime.Nil, nil
			case continueSignal:
				continue
			default:
				return nil, err
			}
		}
	}
}

// evaluateForStatement runs each iteration in a copy of the loop frame, so
// closures created by the body keep the values of their own iteration.
func (i *Interpreter) evaluateForStatement(loop *ast.ForStatement, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	loopEnv := env.Extend()
	if loop.Init != nil {
		if _, err := i.evaluateStatement(loop.Init, loopEnv, state); err != nil {
			return nil, err
		}
	}
	for {
		if loop.Condition != nil {
			cond, err := i.evaluateExpression(loop.Condition, loopEnv, state)
			if err != nil {
				return nil, err
			}
			if !runtime.Truthy(cond) {
				return runtime.Nil, nil
			}
		}
		if _, err := i.evaluateBlock(loop.Body, loopEnv, state); err != nil {
			switch err.(type) {
			case breakSignal:
				return runtime.Nil, nil
			case continueSignal:
			default:
				return nil, err
			}
		}
		loopEnv = loopEnv.CloneFrame()
		if loop.Step != nil {
			if _, err := i.evaluateExpression(loop.Step, loopEnv, state); err != nil {
				return nil, err
			}
		}
	}
}

func (i *Interpreter) evaluateReturnStatement(stmt *ast.ReturnStatement, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	var result runtime.Value = runtime.Nil
	if stmt.Value != nil {
		val, err := i.evaluateExpression(stmt.Value, env, state)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return nil, returnSignal{value: result}
}

type breakSignal struct {
	node ast.Node
}

func (b breakSignal) Error() string {
	return "break"
}

type continueSignal struct {
	node ast.Node
}

func (c continueSignal) Error() string {
	return "continue"
}

type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string {
	return fmt.Sprintf("return %s", runtime.TypeName(r.value))
}
