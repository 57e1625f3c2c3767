package codegen

// generateNativeFunctions emits the hand-written instruction sequences
// backing length, ord, chr, substring and the ?? operator. They follow the
// common calling convention: arguments arrive in named TF variables, the
// result leaves in a named variable of the same frame.
func (g *Generator) generateNativeFunctions() {
	g.generateLength()
	g.generateOrd()
	g.generateChr()
	g.generateSubstring()
	g.generateCoalescing()
}

func (g *Generator) generateLength() {
	g.out.comment("[builtin] length(string)")
	g.out.line("LABEL $length")
	g.out.line("PUSHFRAME")
	g.out.line("DEFVAR %s", varName(FrameLocal, "RETVAL_LEN"))
	g.out.line("STRLEN %s %s", varName(FrameLocal, "RETVAL_LEN"), varName(FrameLocal, "ARG1_LEN"))
	g.out.line("POPFRAME")
	g.out.line("RETURN")
	g.out.blank()
}

func (g *Generator) generateOrd() {
	g.out.comment("[builtin] ord(string)")
	g.out.line("LABEL $ord")
	g.out.line("PUSHFRAME")
	g.out.line("DEFVAR %s", varName(FrameLocal, "RETVAL_ORD"))

	// length(arg)
	g.out.line("CREATEFRAME")
	g.out.line("DEFVAR %s", varName(FrameTemporary, "ARG1_LEN"))
	g.out.line("MOVE %s %s", varName(FrameTemporary, "ARG1_LEN"), varName(FrameLocal, "ARG1_ORD"))
	g.out.line("CALL $length")
	g.out.line("DEFVAR %s", varName(FrameLocal, "STRLEN_OUTPUT"))
	g.out.line("MOVE %s %s", varName(FrameLocal, "STRLEN_OUTPUT"), varName(FrameTemporary, "RETVAL_LEN"))

	// The empty string yields 0.
	g.out.line("MOVE %s int@0", varName(FrameLocal, "RETVAL_ORD"))
	g.out.line("PUSHS %s", varName(FrameLocal, "STRLEN_OUTPUT"))
	g.out.line("PUSHS int@0")
	g.out.line("JUMPIFEQS $ord_empty")
	g.out.line("STRI2INT %s %s int@0", varName(FrameLocal, "RETVAL_ORD"), varName(FrameLocal, "ARG1_ORD"))
	g.out.line("LABEL $ord_empty")

	g.out.line("POPFRAME")
	g.out.line("RETURN")
	g.out.blank()
}

func (g *Generator) generateChr() {
	g.out.comment("[builtin] chr(int)")
	g.out.line("LABEL $chr")
	g.out.line("PUSHFRAME")
	g.out.line("DEFVAR %s", varName(FrameLocal, "RETVAL_CHR"))
	g.out.line("INT2CHAR %s %s", varName(FrameLocal, "RETVAL_CHR"), varName(FrameLocal, "ARG1_CHR"))
	g.out.line("POPFRAME")
	g.out.line("RETURN")
	g.out.blank()
}

func (g *Generator) generateSubstring() {
	g.out.comment("[builtin] substring(string, int, int)")
	g.out.line("LABEL $substr")
	g.out.line("PUSHFRAME")
	g.out.line("DEFVAR %s", varName(FrameLocal, "RETVAL_SUBSTR"))

	// Out-of-range requests return nil.
	g.out.line("MOVE %s nil@nil", varName(FrameLocal, "RETVAL_SUBSTR"))

	// i < 0
	g.out.line("PUSHS %s", varName(FrameLocal, "ARG2_SUBSTR"))
	g.out.line("PUSHS int@0")
	g.out.line("LTS")
	g.out.line("PUSHS bool@true")
	g.out.line("JUMPIFEQS $substr_end")

	// j < 0
	g.out.line("PUSHS %s", varName(FrameLocal, "ARG3_SUBSTR"))
	g.out.line("PUSHS int@0")
	g.out.line("LTS")
	g.out.line("PUSHS bool@true")
	g.out.line("JUMPIFEQS $substr_end")

	// i > j
	g.out.line("PUSHS %s", varName(FrameLocal, "ARG2_SUBSTR"))
	g.out.line("PUSHS %s", varName(FrameLocal, "ARG3_SUBSTR"))
	g.out.line("GTS")
	g.out.line("PUSHS bool@true")
	g.out.line("JUMPIFEQS $substr_end")

	// length(string)
	g.out.line("CREATEFRAME")
	g.out.line("DEFVAR %s", varName(FrameTemporary, "ARG1_LEN"))
	g.out.line("MOVE %s %s", varName(FrameTemporary, "ARG1_LEN"), varName(FrameLocal, "ARG1_SUBSTR"))
	g.out.line("CALL $length")
	g.out.line("DEFVAR %s", varName(FrameLocal, "STRLEN_OUTPUT"))
	g.out.line("MOVE %s %s", varName(FrameLocal, "STRLEN_OUTPUT"), varName(FrameTemporary, "RETVAL_LEN"))

	// i >= length(string)
	g.out.line("PUSHS %s", varName(FrameLocal, "ARG2_SUBSTR"))
	g.out.line("PUSHS %s", varName(FrameLocal, "STRLEN_OUTPUT"))
	g.out.line("LTS")
	g.out.line("NOTS")
	g.out.line("PUSHS bool@true")
	g.out.line("JUMPIFEQS $substr_end")

	// j > length(string)
	g.out.line("PUSHS %s", varName(FrameLocal, "ARG3_SUBSTR"))
	g.out.line("PUSHS %s", varName(FrameLocal, "STRLEN_OUTPUT"))
	g.out.line("GTS")
	g.out.line("PUSHS bool@true")
	g.out.line("JUMPIFEQS $substr_end")

	// Collect characters from i up to j.
	g.out.line("DEFVAR %s", varName(FrameLocal, "SUBSTR_BUFFER"))
	g.out.line("MOVE %s string@", varName(FrameLocal, "SUBSTR_BUFFER"))
	g.out.line("MOVE %s %s", varName(FrameLocal, "RETVAL_SUBSTR"), varName(FrameLocal, "SUBSTR_BUFFER"))
	g.out.line("DEFVAR %s", varName(FrameLocal, "SUBSTR_GETCHAR"))

	g.out.line("LABEL $substr_loop")
	g.out.line("PUSHS %s", varName(FrameLocal, "ARG2_SUBSTR"))
	g.out.line("PUSHS %s", varName(FrameLocal, "ARG3_SUBSTR"))
	g.out.line("LTS")
	g.out.line("PUSHS bool@false")
	g.out.line("JUMPIFEQS $substr_end")

	g.out.line("GETCHAR %s %s %s",
		varName(FrameLocal, "SUBSTR_GETCHAR"),
		varName(FrameLocal, "ARG1_SUBSTR"),
		varName(FrameLocal, "ARG2_SUBSTR"))
	g.out.line("CONCAT %s %s %s",
		varName(FrameLocal, "SUBSTR_BUFFER"),
		varName(FrameLocal, "SUBSTR_BUFFER"),
		varName(FrameLocal, "SUBSTR_GETCHAR"))
	g.out.line("ADD %s %s int@1", varName(FrameLocal, "ARG2_SUBSTR"), varName(FrameLocal, "ARG2_SUBSTR"))
	g.out.line("MOVE %s %s", varName(FrameLocal, "RETVAL_SUBSTR"), varName(FrameLocal, "SUBSTR_BUFFER"))
	g.out.line("JUMP $substr_loop")

	g.out.line("LABEL $substr_end")
	g.out.line("POPFRAME")
	g.out.line("RETURN")
	g.out.blank()
}

func (g *Generator) generateCoalescing() {
	g.out.comment("[builtin] coalescing(left, right)")
	g.out.line("LABEL $coalescing")
	g.out.line("PUSHFRAME")
	g.out.line("DEFVAR %s", varName(FrameLocal, "RETVAL_COA"))

	g.out.line("MOVE %s %s", varName(FrameLocal, "RETVAL_COA"), varName(FrameLocal, "ARG_RIGHT_COA"))
	g.out.line("PUSHS %s", varName(FrameLocal, "ARG_LEFT_COA"))
	g.out.line("PUSHS nil@nil")
	g.out.line("JUMPIFEQS $coalescing_return")
	g.out.line("MOVE %s %s", varName(FrameLocal, "RETVAL_COA"), varName(FrameLocal, "ARG_LEFT_COA"))

	g.out.line("LABEL $coalescing_return")
	g.out.line("POPFRAME")
	g.out.line("RETURN")
	g.out.blank()
}
