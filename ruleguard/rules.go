package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// shellExec flags commands routed through a shell. Arguments must reach the
// child as separate argv entries so caller values are never re-parsed.
func shellExec(m dsl.Matcher) {
	m.Match(
		`exec.Command($sh, "-c", $*_)`,
		`exec.CommandContext($_, $sh, "-c", $*_)`,
	).
		Where(m["sh"].Text.Matches(`^"(/bin/|/usr/bin/)?(sh|bash|zsh|dash)"$`)).
		Report(`do not run commands through a shell; pass argv directly`)

	m.Match(`exec.Command($cmd)`, `exec.CommandContext($_, $cmd)`).
		Where(m["cmd"].Text.Matches(`^".* .*"$`)).
		Report(`program name contains a space; split it into program and arguments`)
}

// stdoutWrites flags direct stdout writes outside cmd/. With the stdio
// transport stdout carries the protocol stream.
func stdoutWrites(m dsl.Matcher) {
	m.Match(`fmt.Println($*_)`, `fmt.Printf($*_)`, `fmt.Print($*_)`, `println($*_)`).
		Where(!m.File().PkgPath.Matches(`/cmd/`)).
		Report(`stdout is the MCP stream; log through slog instead`)

	m.Match(`log.Println($*_)`, `log.Printf($*_)`, `log.Fatal($*_)`, `log.Fatalf($*_)`).
		Report(`use the injected *slog.Logger`)
}

func smells(m dsl.Matcher) {
	// Two guards returning the same value can be merged with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}
