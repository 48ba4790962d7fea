package inter

import (
	"rui/bytecode"
)

func (in *Interpreter) trace(pos int, t *thread, line, offset int, ins bytecode.Instruction) {
	if in.log == nil {
		return
	}
	e := in.log.Debug()
	if !e.Enabled() {
		return
	}
	e.Uint64("tick", in.stats.Ticks).
		Int("thread", pos).
		Int("line", line+1).
		Int("offset", offset).
		Str("reg", t.reg.String()).
		Int("threads", len(in.threads)).
		Msg(ins.String())
}
