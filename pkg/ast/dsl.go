package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Flt(value float64) *FloatLiteral {
	return NewFloatLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Nil() *NilLiteral {
	return NewNilLiteral()
}

// Type helpers.

func Ty(name string) *SimpleType {
	return NewSimpleType(name)
}

func FnTy(ret TypeExpression, params ...TypeExpression) *FunctionType {
	return NewFunctionType(params, ret)
}

func RefTy(target TypeExpression) *ReferenceType {
	return NewReferenceType(target)
}

// Expression helpers.

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func And(left, right Expression) *LogicalExpression {
	return NewLogicalExpression("and", left, right)
}

func Or(left, right Expression) *LogicalExpression {
	return NewLogicalExpression("or", left, right)
}

func Un(op string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand)
}

func Assign(target AssignmentTarget, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(target, value)
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, args)
}

func CallName(name string, args ...Expression) *CallExpression {
	return NewCallExpression(ID(name), args)
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index, false)
}

func Member(object Expression, name string) *IndexExpression {
	return NewIndexExpression(object, Str(name), true)
}

func Table(fields ...*TableField) *TableConstructor {
	return NewTableConstructor(fields)
}

// Arr builds a table constructor holding only positional elements.
func Arr(elements ...Expression) *TableConstructor {
	fields := make([]*TableField, 0, len(elements))
	for _, el := range elements {
		fields = append(fields, Pos(el))
	}
	return NewTableConstructor(fields)
}

func Pos(value Expression) *TableField {
	return NewTableField(FieldPositional, "", nil, value)
}

func Field(name string, value Expression) *TableField {
	return NewTableField(FieldNamed, name, nil, value)
}

func Keyed(key, value Expression) *TableField {
	return NewTableField(FieldKeyed, "", key, value)
}

func Param(name string, typ TypeExpression) *Parameter {
	return NewParameter(ID(name), typ)
}

func Params(names ...string) []*Parameter {
	out := make([]*Parameter, 0, len(names))
	for _, name := range names {
		out = append(out, Param(name, nil))
	}
	return out
}

func Lambda(params []*Parameter, body ...Statement) *FunctionLiteral {
	return NewFunctionLiteral(params, nil, Block(body...), false)
}

func Spawn(call *CallExpression) *SpawnExpression {
	return NewSpawnExpression(call)
}

func Await(operand Expression) *AwaitExpression {
	return NewAwaitExpression(operand)
}

// Statement helpers.

func Local(name string, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(ID(name), nil, value, false, false)
}

func LocalTyped(name string, typ TypeExpression, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(ID(name), typ, value, false, false)
}

func LocalInfer(name string, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(ID(name), nil, value, false, true)
}

func Const(name string, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(ID(name), nil, value, true, false)
}

func FnDecl(name string, params []*Parameter, body ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(ID(name), Lambda(params, body...))
}

func If(cond Expression, then *BlockStatement, elseBranch Statement) *IfStatement {
	return NewIfStatement(cond, then, elseBranch)
}

func While(cond Expression, body ...Statement) *WhileStatement {
	return NewWhileStatement(cond, Block(body...))
}

func For(init Statement, cond, step Expression, body ...Statement) *ForStatement {
	return NewForStatement(init, cond, step, Block(body...))
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

func Brk() *BreakStatement {
	return NewBreakStatement()
}

func Cont() *ContinueStatement {
	return NewContinueStatement()
}

func Block(statements ...Statement) *BlockStatement {
	return NewBlockStatement(statements)
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Prog(statements ...Statement) *Program {
	return NewProgram(statements)
}
