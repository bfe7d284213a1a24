package ast

type NodeType string

const (
	NodeProgram             NodeType = "Program"
	NodeIdentifier          NodeType = "Identifier"
	NodeIntegerLiteral      NodeType = "IntegerLiteral"
	NodeFloatLiteral        NodeType = "FloatLiteral"
	NodeStringLiteral       NodeType = "StringLiteral"
	NodeBooleanLiteral      NodeType = "BooleanLiteral"
	NodeNilLiteral          NodeType = "NilLiteral"
	NodeBinaryExpression    NodeType = "BinaryExpression"
	NodeLogicalExpression   NodeType = "LogicalExpression"
	NodeUnaryExpression     NodeType = "UnaryExpression"
	NodeAssignment          NodeType = "AssignmentExpression"
	NodeCallExpression      NodeType = "CallExpression"
	NodeIndexExpression     NodeType = "IndexExpression"
	NodeTableConstructor    NodeType = "TableConstructor"
	NodeTableField          NodeType = "TableField"
	NodeFunctionLiteral     NodeType = "FunctionLiteral"
	NodeSpawnExpression     NodeType = "SpawnExpression"
	NodeAwaitExpression     NodeType = "AwaitExpression"
	NodeVariableDeclaration NodeType = "VariableDeclaration"
	NodeFunctionDeclaration NodeType = "FunctionDeclaration"
	NodeParameter           NodeType = "Parameter"
	NodeIfStatement         NodeType = "IfStatement"
	NodeWhileStatement      NodeType = "WhileStatement"
	NodeForStatement        NodeType = "ForStatement"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeBreakStatement      NodeType = "BreakStatement"
	NodeContinueStatement   NodeType = "ContinueStatement"
	NodeBlockStatement      NodeType = "BlockStatement"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeSimpleType          NodeType = "SimpleType"
	NodeFunctionType        NodeType = "FunctionType"
	NodeReferenceType       NodeType = "ReferenceType"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

// Position is a 1-based line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type TypeExpression interface {
	Node
	typeExpressionNode()
}

type typeExpressionMarker struct{}

func (typeExpressionMarker) typeExpressionNode() {}

// AssignmentTarget is implemented by expressions that may appear on the
// left of '='.
type AssignmentTarget interface {
	Expression
	assignmentTargetNode()
}

type assignmentTargetMarker struct{}

func (assignmentTargetMarker) assignmentTargetNode() {}

// Program is the root of a parsed source file.
type Program struct {
	nodeImpl

	Statements []Statement `json:"statements"`
}

func NewProgram(statements []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Statements: statements}
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

type Identifier struct {
	nodeImpl
	expressionMarker
	assignmentTargetMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker

	Value int64 `json:"value"`
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker

	Value float64 `json:"value"`
}

func NewFloatLiteral(value float64) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloatLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NilLiteral struct {
	nodeImpl
	expressionMarker
}

func NewNilLiteral() *NilLiteral {
	return &NilLiteral{nodeImpl: newNodeImpl(NodeNilLiteral)}
}

// BinaryExpression covers arithmetic, comparison and equality operators.
type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// LogicalExpression is a short-circuiting "and" / "or".
type LogicalExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewLogicalExpression(operator string, left, right Expression) *LogicalExpression {
	return &LogicalExpression{nodeImpl: newNodeImpl(NodeLogicalExpression), Operator: operator, Left: left, Right: right}
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type AssignmentExpression struct {
	nodeImpl
	expressionMarker

	Target AssignmentTarget `json:"target"`
	Value  Expression       `json:"value"`
}

func NewAssignmentExpression(target AssignmentTarget, value Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignment), Target: target, Value: value}
}

type CallExpression struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCallExpression(callee Expression, args []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: args}
}

// IndexExpression is t[k]; Dotted marks the t.name spelling, whose Index is
// always a StringLiteral.
type IndexExpression struct {
	nodeImpl
	expressionMarker
	assignmentTargetMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
	Dotted bool       `json:"dotted,omitempty"`
}

func NewIndexExpression(object, index Expression, dotted bool) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index, Dotted: dotted}
}

type TableFieldKind int

const (
	FieldPositional TableFieldKind = iota
	FieldNamed
	FieldKeyed
)

// TableField is one entry of a table constructor: `v`, `name = v` or `[k] = v`.
type TableField struct {
	nodeImpl

	Kind  TableFieldKind `json:"kind"`
	Name  string         `json:"name,omitempty"`
	Key   Expression     `json:"key,omitempty"`
	Value Expression     `json:"value"`
}

func NewTableField(kind TableFieldKind, name string, key, value Expression) *TableField {
	return &TableField{nodeImpl: newNodeImpl(NodeTableField), Kind: kind, Name: name, Key: key, Value: value}
}

type TableConstructor struct {
	nodeImpl
	expressionMarker

	Fields []*TableField `json:"fields"`
}

func NewTableConstructor(fields []*TableField) *TableConstructor {
	return &TableConstructor{nodeImpl: newNodeImpl(NodeTableConstructor), Fields: fields}
}

type Parameter struct {
	nodeImpl

	Name *Identifier    `json:"name"`
	Type TypeExpression `json:"type,omitempty"`
}

func NewParameter(name *Identifier, typ TypeExpression) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name, Type: typ}
}

type FunctionLiteral struct {
	nodeImpl
	expressionMarker

	Params     []*Parameter    `json:"params"`
	ReturnType TypeExpression  `json:"returnType,omitempty"`
	Body       *BlockStatement `json:"body"`
	IsAsync    bool            `json:"isAsync,omitempty"`
}

func NewFunctionLiteral(params []*Parameter, returnType TypeExpression, body *BlockStatement, isAsync bool) *FunctionLiteral {
	return &FunctionLiteral{nodeImpl: newNodeImpl(NodeFunctionLiteral), Params: params, ReturnType: returnType, Body: body, IsAsync: isAsync}
}

type SpawnExpression struct {
	nodeImpl
	expressionMarker

	Call *CallExpression `json:"call"`
}

func NewSpawnExpression(call *CallExpression) *SpawnExpression {
	return &SpawnExpression{nodeImpl: newNodeImpl(NodeSpawnExpression), Call: call}
}

type AwaitExpression struct {
	nodeImpl
	expressionMarker

	Operand Expression `json:"operand"`
}

func NewAwaitExpression(operand Expression) *AwaitExpression {
	return &AwaitExpression{nodeImpl: newNodeImpl(NodeAwaitExpression), Operand: operand}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

// VariableDeclaration is `local`/`const`. Inferred marks the `:=` form, in
// which case Type holds the type read off the initializer's syntax (or nil).
type VariableDeclaration struct {
	nodeImpl
	statementMarker

	Name     *Identifier    `json:"name"`
	Type     TypeExpression `json:"type,omitempty"`
	Value    Expression     `json:"value,omitempty"`
	IsConst  bool           `json:"isConst,omitempty"`
	Inferred bool           `json:"inferred,omitempty"`
}

func NewVariableDeclaration(name *Identifier, typ TypeExpression, value Expression, isConst, inferred bool) *VariableDeclaration {
	return &VariableDeclaration{
		nodeImpl: newNodeImpl(NodeVariableDeclaration),
		Name:     name,
		Type:     typ,
		Value:    value,
		IsConst:  isConst,
		Inferred: inferred,
	}
}

type FunctionDeclaration struct {
	nodeImpl
	statementMarker

	Name     *Identifier      `json:"name"`
	Function *FunctionLiteral `json:"function"`
}

func NewFunctionDeclaration(name *Identifier, fn *FunctionLiteral) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDeclaration), Name: name, Function: fn}
}

// IfStatement's Else is nil, a *BlockStatement, or a chained *IfStatement.
type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression      `json:"condition"`
	Then      *BlockStatement `json:"then"`
	Else      Statement       `json:"else,omitempty"`
}

func NewIfStatement(cond Expression, then *BlockStatement, elseBranch Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: cond, Then: then, Else: elseBranch}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression      `json:"condition"`
	Body      *BlockStatement `json:"body"`
}

func NewWhileStatement(cond Expression, body *BlockStatement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: cond, Body: body}
}

// ForStatement is the C-style loop; every header clause is optional.
type ForStatement struct {
	nodeImpl
	statementMarker

	Init      Statement       `json:"init,omitempty"`
	Condition Expression      `json:"condition,omitempty"`
	Step      Expression      `json:"step,omitempty"`
	Body      *BlockStatement `json:"body"`
}

func NewForStatement(init Statement, cond, step Expression, body *BlockStatement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Init: init, Condition: cond, Step: step, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}

type BreakStatement struct {
	nodeImpl
	statementMarker
}

func NewBreakStatement() *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement)}
}

type ContinueStatement struct {
	nodeImpl
	statementMarker
}

func NewContinueStatement() *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement)}
}

type BlockStatement struct {
	nodeImpl
	statementMarker

	Statements []Statement `json:"statements"`
}

func NewBlockStatement(statements []Statement) *BlockStatement {
	return &BlockStatement{nodeImpl: newNodeImpl(NodeBlockStatement), Statements: statements}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

//-----------------------------------------------------------------------------
// Type annotations (metadata only)
//-----------------------------------------------------------------------------

// SimpleType names a built-in type (int, float, string, bool, nil, table) or
// a user-chosen identifier.
type SimpleType struct {
	nodeImpl
	typeExpressionMarker

	Name string `json:"name"`
}

func NewSimpleType(name string) *SimpleType {
	return &SimpleType{nodeImpl: newNodeImpl(NodeSimpleType), Name: name}
}

type FunctionType struct {
	nodeImpl
	typeExpressionMarker

	Params []TypeExpression `json:"params"`
	Return TypeExpression   `json:"return,omitempty"`
}

func NewFunctionType(params []TypeExpression, ret TypeExpression) *FunctionType {
	return &FunctionType{nodeImpl: newNodeImpl(NodeFunctionType), Params: params, Return: ret}
}

// ReferenceType is `&T` (also spelled `*T`).
type ReferenceType struct {
	nodeImpl
	typeExpressionMarker

	Target TypeExpression `json:"target"`
}

func NewReferenceType(target TypeExpression) *ReferenceType {
	return &ReferenceType{nodeImpl: newNodeImpl(NodeReferenceType), Target: target}
}
