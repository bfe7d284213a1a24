package interpreter

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/samjay22/Lux/pkg/runtime"
)

const twoSumProgram = `
fn two_sum(nums: &table, target: int) -> table {
	local cache := {}
	for (local i := 1; i <= #nums; i = i + 1) {
		local complement := target - nums[i]
		if cache[complement] != nil {
			return {cache[complement], i}
		}
		cache[nums[i]] = i
	}
	return {}
}
local task := spawn two_sum(&{2, 7, 11, 15}, 9)
local answer := await task
print(answer)
`

func TestTwoSumThroughSpawn(t *testing.T) {
	res := mustRun(t, twoSumProgram)
	if res.stdout != "{1, 2}\n" {
		t.Fatalf("stdout = %q", res.stdout)
	}
	answer := tableOf(t, lookup(t, res.env, "answer"))
	first, _ := answer.RawGet(runtime.IntKey(1))
	second, _ := answer.RawGet(runtime.IntKey(2))
	if first != (runtime.IntValue{Val: 1}) || second != (runtime.IntValue{Val: 2}) || answer.Count() != 2 {
		t.Fatalf("answer = %v", answer.Entries())
	}
}

func TestSpawnAwaitReturnsResult(t *testing.T) {
	expectOutput(t, `
		fn worker(n) { return n * 2 }
		local f := spawn worker(10)
		local r := await f
		print(r)
	`, "20\n")
}

func TestAwaitTwiceReturnsIdenticalValue(t *testing.T) {
	res := mustRun(t, `
		fn make() { return {} }
		local f := spawn make()
		local a := await f
		local b := await f
		print(rawequal(a, b))
	`)
	if res.stdout != "true\n" {
		t.Fatalf("stdout = %q", res.stdout)
	}
	if lookup(t, res.env, "a") != lookup(t, res.env, "b") {
		t.Fatalf("awaits returned different tables")
	}
}

func TestConcurrentDisjointCounters(t *testing.T) {
	const workers, increments = 8, 100
	res := mustRun(t, fmt.Sprintf(`
		local counters := {}
		fn worker(key, n) {
			for (local i := 0; i < n; i = i + 1) {
				counters[key] = (counters[key] or 0) + 1
			}
			return counters[key]
		}
		local handles := {}
		for (local k := 1; k <= %d; k = k + 1) {
			handles[k] = spawn worker("c" + tostring(k), %d)
		}
		local results := await handles
	`, workers, increments))
	counters := tableOf(t, lookup(t, res.env, "counters"))
	results := tableOf(t, lookup(t, res.env, "results"))
	if counters.Count() != workers || results.Count() != workers {
		t.Fatalf("counters=%d results=%d", counters.Count(), results.Count())
	}
	for k := 1; k <= workers; k++ {
		got, _ := counters.RawGet(runtime.StringKey(fmt.Sprintf("c%d", k)))
		if got != (runtime.IntValue{Val: increments}) {
			t.Fatalf("counter c%d = %#v", k, got)
		}
		res, _ := results.RawGet(runtime.IntKey(int64(k)))
		if res != (runtime.IntValue{Val: increments}) {
			t.Fatalf("result %d = %#v", k, res)
		}
	}
}

func TestAwaitTablePassesThroughNonHandles(t *testing.T) {
	expectOutput(t, `
		fn id(x) { return x }
		local results := await {spawn id(1), "plain", named = spawn id("n")}
		print(results)
	`, "{1, \"plain\", named = \"n\"}\n")
}

func TestAwaitNonTaskIsTypeError(t *testing.T) {
	expectKind(t, `print(await 5)`, ErrType)
}

func TestTaskFailureReraisedAtAwait(t *testing.T) {
	src := "fn bad() { return nil + 1 }\nlocal h := spawn bad()\nlocal r :=\n  await h"
	rt := expectKind(t, src, ErrType)
	if rt.Pos.Line != 4 || rt.Pos.Column != 3 {
		t.Fatalf("await error position = %+v", rt.Pos)
	}
	var cause *RuntimeError
	if !errors.As(rt.Cause, &cause) || cause.Pos.Line != 1 {
		t.Fatalf("expected the task's own error as cause, got %v", rt.Cause)
	}
	res := runSource(t, src)
	if list, ok := res.err.(ErrorList); !ok || len(list) != 1 {
		t.Fatalf("an awaited failure must not be reported twice: %v", res.err)
	}
}

func TestUnawaitedFailureReportedAfterFlush(t *testing.T) {
	res := runSource(t, `
		fn bad() { return missing }
		spawn bad()
		print("main done")
	`)
	if res.stdout != "main done\n" {
		t.Fatalf("stdout = %q", res.stdout)
	}
	list, ok := res.err.(ErrorList)
	if !ok || len(list) != 1 {
		t.Fatalf("expected one unawaited failure, got %v", res.err)
	}
	if list[0].Kind != ErrUndefinedVariable || !strings.Contains(list[0].Message, "unawaited task") {
		t.Fatalf("unexpected error %v", list[0])
	}
}

func TestSpawnEvaluatesArgumentsEagerly(t *testing.T) {
	expectOutput(t, `
		local x = 1
		fn read(v) { return v }
		local h := spawn read(x)
		x = 2
		print(await h)
	`, "1\n", WithExecutor(serialExecutor(t)))
}

func TestSerialExecutorRunsInOrder(t *testing.T) {
	expectOutput(t, `
		fn say(x) { print(x) return x }
		local a := spawn say(1)
		local b := spawn say(2)
		local c := spawn say(3)
		await c
	`, "1\n2\n3\n", WithExecutor(serialExecutor(t)))
}

func TestSerialExecutorNestedAwait(t *testing.T) {
	expectOutput(t, `
		fn inner() { return 5 }
		fn outer() {
			local h := spawn inner()
			return await h
		}
		print(await spawn outer())
	`, "5\n", WithExecutor(serialExecutor(t)))
}

func TestTaskPanicBecomesFailure(t *testing.T) {
	exec := NewGoroutineExecutor()
	handle := exec.Spawn(func() (runtime.Value, error) {
		panic("boom")
	})
	exec.Flush()
	_, err := handle.Await()
	var panicErr *TaskPanicError
	if !errors.As(err, &panicErr) || panicErr.Value != "boom" {
		t.Fatalf("expected TaskPanicError, got %v", err)
	}
}

func TestNativePrintIsSerialized(t *testing.T) {
	res := mustRun(t, `
		fn shout(n) { for (local i := 0; i < 20; i = i + 1) { print("line", n) } }
		local hs := {}
		for (local n := 1; n <= 4; n = n + 1) { hs[n] = spawn shout(n) }
		await hs
	`)
	for _, line := range strings.Split(strings.TrimSuffix(res.stdout, "\n"), "\n") {
		if !strings.HasPrefix(line, "line\t") || len(line) != len("line\t1") {
			t.Fatalf("interleaved output line %q", line)
		}
	}
	if n := strings.Count(res.stdout, "\n"); n != 80 {
		t.Fatalf("expected 80 lines, got %d", n)
	}
}
