package parser

import (
	"testing"

	"github.com/samjay22/Lux/pkg/ast"
)

var roundTripPrograms = map[string]string{
	"fibonacci": `fn fibonacci(n:int)->int{ if n<2 {return n} return fibonacci(n-1)+fibonacci(n-2) } local result := fibonacci(10) print(result)`,
	"two sum": `
		fn two_sum(nums: &table, target: int) -> table {
			local cache := {}
			for (local i := 1; i <= #nums; i = i + 1) {
				local complement := target - nums[i]
				if cache[complement] != nil { return {cache[complement], i} }
				cache[nums[i]] = i
			}
			return {}
		}
		local task := spawn two_sum(&{2,7,11,15}, 9)
		local answer := await task`,
	"metatables": `
		local mt := {
			__add = fn(a, b) { return {x = a.x + b.x, y = a.y + b.y} },
			__tostring = fn(v) { return "(" + tostring(v.x) + ")" },
		}
		local a := setmetatable({x = 10, y = 20}, mt)
		local b := setmetatable({x = 10, y = 20}, mt)
		local c := a + b
		getmetatable(c)["__index"] = {["weird key"] = 1, [1 + 2] = "three"}`,
	"grouping": `local v := (1 + 2) * -(3 - 4) / (a or b) % 2;
		(f)(1);
		-v
		x = not (a and b) == (c != d)`,
	"nested functions": `
		local counter := fn() -> fn() -> int {
			local n: int = 0
			return fn() { n = n + 1 return n }
		}
		async fn worker(id) { while true { if id > 3 { break } else { id = id + 1 continue } } return; }`,
	"strings": `local s := "tab\there \"quoted\" back\\slash\n" const empty = ""`,
	"loops": `for (;;) { break } for local i = 0; i < 3; i = i + 1 { } while x { { local inner := 1 } }`,
}

func TestRoundTripThroughPrinter(t *testing.T) {
	for name, src := range roundTripPrograms {
		t.Run(name, func(t *testing.T) {
			first := mustParse(t, src)
			printed := ast.Print(first)
			second, err := ParseSource(printed, "printed.lux")
			if err != nil {
				t.Fatalf("reparse printed source: %v\n%s", err, printed)
			}
			if !ast.Equal(first, second) {
				t.Fatalf("round trip changed the tree\nprinted:\n%s\nreprinted:\n%s", printed, ast.Print(second))
			}
			if again := ast.Print(second); again != printed {
				t.Fatalf("printer is not idempotent\nfirst:\n%s\nsecond:\n%s", printed, again)
			}
		})
	}
}
