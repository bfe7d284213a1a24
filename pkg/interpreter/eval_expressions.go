package interpreter

import (
	"errors"

	"github.com/samjay22/Lux/pkg/ast"
	"github.com/samjay22/Lux/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.IntegerLiteral:
		return runtime.IntValue{Val: n.Value}, nil
	case *ast.FloatLiteral:
		return runtime.FloatValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.NilLiteral:
		return runtime.Nil, nil
	case *ast.Identifier:
		return i.evaluateIdentifier(n, env, state)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, env, state)
	case *ast.LogicalExpression:
		return i.evaluateLogicalExpression(n, env, state)
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, env, state)
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n, env, state)
	case *ast.CallExpression:
		return i.evaluateCallExpression(n, env, state)
	case *ast.IndexExpression:
		return i.evaluateIndexExpression(n, env, state)
	case *ast.TableConstructor:
		return i.evaluateTableConstructor(n, env, state)
	case *ast.FunctionLiteral:
		return i.makeFunction("", n, env, state), nil
	case *ast.SpawnExpression:
		return i.evaluateSpawnExpression(n, env, state)
	case *ast.AwaitExpression:
		return i.evaluateAwaitExpression(n, env, state)
	default:
		return nil, i.fail(state, node, ErrInternal, "unsupported expression type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateIdentifier(id *ast.Identifier, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	val, err := env.Resolve(id.Name)
	if err != nil {
		return nil, i.fail(state, id, ErrUndefinedVariable, "undefined variable '%s'", id.Name)
	}
	return val, nil
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env, state)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env, state)
	if err != nil {
		return nil, err
	}
	return i.binaryOp(expr.Operator, left, right, expr, state)
}

// evaluateLogicalExpression short-circuits and yields the deciding operand.
func (i *Interpreter) evaluateLogicalExpression(expr *ast.LogicalExpression, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env, state)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "and":
		if !runtime.Truthy(left) {
			return left, nil
		}
	case "or":
		if runtime.Truthy(left) {
			return left, nil
		}
	default:
		return nil, i.fail(state, expr, ErrInternal, "unknown logical operator %s", expr.Operator)
	}
	return i.evaluateExpression(expr.Right, env, state)
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env, state)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "not":
		return runtime.BoolValue{Val: !runtime.Truthy(operand)}, nil
	case "-":
		return i.negate(operand, expr, state)
	case "#":
		return i.length(operand, expr, state)
	case "&":
		switch operand.(type) {
		case *runtime.Table, *runtime.FunctionValue, *runtime.NativeFunctionValue, *runtime.TaskHandle:
			return operand, nil
		}
		return nil, i.fail(state, expr, ErrType, "cannot take a reference to a %s value", runtime.TypeName(operand))
	default:
		return nil, i.fail(state, expr, ErrInternal, "unknown unary operator %s", expr.Operator)
	}
}

// evaluateAssignment evaluates the target's object and key before the value.
func (i *Interpreter) evaluateAssignment(assign *ast.AssignmentExpression, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	switch target := assign.Target.(type) {
	case *ast.Identifier:
		value, err := i.evaluateExpression(assign.Value, env, state)
		if err != nil {
			return nil, err
		}
		if err := env.Assign(target.Name, value); err != nil {
			var constErr *runtime.ConstAssignmentError
			if errors.As(err, &constErr) {
				return nil, i.fail(state, target, ErrType, "cannot assign to const '%s'", target.Name)
			}
			return nil, i.fail(state, target, ErrUndefinedVariable, "undefined variable '%s'", target.Name)
		}
		return value, nil
	case *ast.IndexExpression:
		object, err := i.evaluateExpression(target.Object, env, state)
		if err != nil {
			return nil, err
		}
		key, err := i.evaluateExpression(target.Index, env, state)
		if err != nil {
			return nil, err
		}
		value, err := i.evaluateExpression(assign.Value, env, state)
		if err != nil {
			return nil, err
		}
		if err := i.setIndex(object, key, value, target, state); err != nil {
			return nil, err
		}
		return value, nil
	default:
		return nil, i.fail(state, assign, ErrInternal, "unsupported assignment target %T", assign.Target)
	}
}

func (i *Interpreter) evaluateArguments(args []ast.Expression, env *runtime.Environment, state *evalState) ([]runtime.Value, error) {
	values := make([]runtime.Value, 0, len(args))
	for _, arg := range args {
		val, err := i.evaluateExpression(arg, env, state)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return values, nil
}

// evaluateCallExpression resolves the callee first, then the arguments left
// to right, then calls.
func (i *Interpreter) evaluateCallExpression(call *ast.CallExpression, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, env, state)
	if err != nil {
		return nil, err
	}
	args, err := i.evaluateArguments(call.Arguments, env, state)
	if err != nil {
		return nil, err
	}
	return i.callValue(callee, args, call, state)
}

func (i *Interpreter) evaluateIndexExpression(expr *ast.IndexExpression, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	object, err := i.evaluateExpression(expr.Object, env, state)
	if err != nil {
		return nil, err
	}
	key, err := i.evaluateExpression(expr.Index, env, state)
	if err != nil {
		return nil, err
	}
	return i.index(object, key, expr, state)
}

// evaluateTableConstructor assigns positional elements consecutive integer
// keys from 1, counting positional elements only. A nil element still uses
// up its index.
func (i *Interpreter) evaluateTableConstructor(expr *ast.TableConstructor, env *runtime.Environment, state *evalState) (runtime.Value, error) {
	table := runtime.NewTable()
	var next int64 = 1
	for _, field := range expr.Fields {
		switch field.Kind {
		case ast.FieldPositional:
			val, err := i.evaluateExpression(field.Value, env, state)
			if err != nil {
				return nil, err
			}
			table.RawSet(runtime.IntKey(next), val)
			next++
		case ast.FieldNamed:
			val, err := i.evaluateExpression(field.Value, env, state)
			if err != nil {
				return nil, err
			}
			table.RawSet(runtime.StringKey(field.Name), val)
		case ast.FieldKeyed:
			keyVal, err := i.evaluateExpression(field.Key, env, state)
			if err != nil {
				return nil, err
			}
			key, err := runtime.KeyOf(keyVal)
			if err != nil {
				return nil, i.fail(state, field.Key, ErrIndex, "%s", err.Error())
			}
			val, err := i.evaluateExpression(field.Value, env, state)
			if err != nil {
				return nil, err
			}
			table.RawSet(key, val)
		}
	}
	return table, nil
}
