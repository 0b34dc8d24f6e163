package memlog

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Printf validation follows the rules of fmt's own printer, so that a call
// is rejected when fmt would emit one of its %! markers, and never
// because caller data happens to contain such text.

var (
	errNoVerb   = errors.New("missing verb at end of format")
	errBadIndex = errors.New("bad argument index")
	errMissing  = errors.New("missing operand")
	errExtra    = errors.New("extra operands")
	errBadWidth = errors.New("width operand is not an int")
	errBadPrec  = errors.New("precision operand is not a non-negative int")
)

// operandUse records one consumption of an operand by the format string.
type operandUse struct {
	arg  int
	verb rune // 0 for operands used as '*' width/precision
}

func tooLarge(n int) bool {
	const limit int = 1e6
	return n > limit || n < -limit
}

// parseNum parses a decimal at s[start:end].
func parseNum(s string, start, end int) (num int, isNum bool, newi int) {
	if start >= end {
		return 0, false, end
	}
	for newi = start; newi < end && '0' <= s[newi] && s[newi] <= '9'; newi++ {
		if tooLarge(num) {
			return 0, false, end
		}
		num = num*10 + int(s[newi]-'0')
		isNum = true
	}
	return
}

// parseArgIndex parses "[n]" at the start of s.
func parseArgIndex(s string) (index, wid int, ok bool) {
	if len(s) < 3 {
		return 0, 1, false
	}
	for i := 1; i < len(s); i++ {
		if s[i] == ']' {
			n, ok, newi := parseNum(s, 1, i)
			if !ok || newi != i {
				return 0, i + 1, false
			}
			return n - 1, i + 1, true
		}
	}
	return 0, 1, false
}

// intOperand reports whether a is usable as a '*' width or precision.
func intOperand(a any) (int, bool) {
	if n, ok := a.(int); ok {
		return n, !tooLarge(n)
	}
	v := reflect.ValueOf(a)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if int64(int(n)) == n && !tooLarge(int(n)) {
			return int(n), true
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := v.Uint()
		if int64(n) >= 0 && uint64(int(n)) == n && !tooLarge(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// scanFormat walks format the way fmt does and returns every operand use, or
// the first structural failure.
func scanFormat(format string, args []any) ([]operandUse, error) {
	var uses []operandUse
	argNum := 0
	reordered := false
	end := len(format)

	for i := 0; i < end; {
		for i < end && format[i] != '%' {
			i++
		}
		if i >= end {
			break
		}
		i++

		for ; i < end; i++ {
			if c := format[i]; c != '#' && c != '0' && c != '+' && c != '-' && c != ' ' {
				break
			}
		}

		goodArgNum := true
		afterIndex := false
		argIndex := func() {
			if i >= end || format[i] != '[' {
				afterIndex = false
				return
			}
			reordered = true
			idx, wid, ok := parseArgIndex(format[i:])
			i += wid
			if ok && idx >= 0 && idx < len(args) {
				argNum, afterIndex = idx, true
				return
			}
			goodArgNum = false
			afterIndex = ok
		}
		star := func(bad error, allowNegative bool) error {
			if argNum >= len(args) {
				return bad
			}
			n, ok := intOperand(args[argNum])
			if !ok || (!allowNegative && n < 0) {
				return bad
			}
			uses = append(uses, operandUse{arg: argNum})
			argNum++
			return nil
		}

		argIndex()

		if i < end && format[i] == '*' {
			i++
			if err := star(errBadWidth, true); err != nil {
				return nil, err
			}
			afterIndex = false
		} else {
			// A literal too large to parse consumes the rest of the
			// format and is reported as a missing verb below.
			var present bool
			_, present, i = parseNum(format, i, end)
			if afterIndex && present {
				goodArgNum = false
			}
		}

		if i+1 < end && format[i] == '.' {
			i++
			if afterIndex {
				goodArgNum = false
			}
			argIndex()
			if i < end && format[i] == '*' {
				i++
				if err := star(errBadPrec, false); err != nil {
					return nil, err
				}
				afterIndex = false
			} else {
				_, _, i = parseNum(format, i, end)
			}
		}

		if !afterIndex {
			argIndex()
		}
		if i >= end {
			return nil, errNoVerb
		}
		verb, size := utf8.DecodeRuneInString(format[i:])
		i += size

		switch {
		case verb == '%':
		case !goodArgNum:
			return nil, fmt.Errorf("%w for %%%c", errBadIndex, verb)
		case argNum >= len(args):
			return nil, fmt.Errorf("%w for %%%c", errMissing, verb)
		default:
			uses = append(uses, operandUse{arg: argNum, verb: verb})
			argNum++
		}
	}

	if !reordered && argNum < len(args) {
		return nil, fmt.Errorf("%w: %d unused", errExtra, len(args)-argNum)
	}
	return uses, nil
}

const (
	intVerbs     = "bcdoOqxXU"
	floatVerbs   = "bgGxXfFeE"
	stringVerbs  = "sxXq"
	pointerVerbs = "pbodxX"
)

// operandFits reports whether fmt prints a with verb without a %! marker.
func operandFits(a any, verb rune) bool {
	switch verb {
	case 'v', 'T':
		return true
	case 'p':
		switch reflect.ValueOf(a).Kind() {
		case reflect.Chan, reflect.Func, reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
			return true
		}
		return false
	case 'w':
		return false
	}
	if a == nil {
		return false
	}
	if rv, ok := a.(reflect.Value); ok {
		if !rv.IsValid() {
			return true
		}
		return valueFits(rv, verb, 0)
	}
	return valueFits(reflect.ValueOf(a), verb, 0)
}

func valueFits(v reflect.Value, verb rune, depth int) bool {
	if !v.IsValid() {
		return false
	}
	if v.CanInterface() {
		switch v.Interface().(type) {
		case fmt.Formatter:
			return true
		case error, fmt.Stringer:
			if strings.ContainsRune(stringVerbs, verb) {
				return true
			}
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		return verb == 't'
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strings.ContainsRune(intVerbs, verb)
	case reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return strings.ContainsRune(floatVerbs, verb)
	case reflect.String:
		return strings.ContainsRune(stringVerbs, verb)
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !valueFits(iter.Key(), verb, depth+1) || !valueFits(iter.Value(), verb, depth+1) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !valueFits(v.Field(i), verb, depth+1) {
				return false
			}
		}
		return true
	case reflect.Interface:
		e := v.Elem()
		if !e.IsValid() {
			return true
		}
		return valueFits(e, verb, depth+1)
	case reflect.Array, reflect.Slice:
		if strings.ContainsRune(stringVerbs, verb) && v.Type().Elem().Kind() == reflect.Uint8 {
			return true
		}
		for i := 0; i < v.Len(); i++ {
			if !valueFits(v.Index(i), verb, depth+1) {
				return false
			}
		}
		return true
	case reflect.Pointer:
		if depth == 0 && !v.IsNil() {
			switch v.Elem().Kind() {
			case reflect.Array, reflect.Slice, reflect.Struct, reflect.Map:
				return valueFits(v.Elem(), verb, depth+1)
			}
		}
		return strings.ContainsRune(pointerVerbs, verb)
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return strings.ContainsRune(pointerVerbs, verb)
	}
	return false
}

// checkedOperand is handed to fmt in place of a caller operand. It renders
// the operand itself, calling its methods directly so a panic is recorded
// instead of being turned into text.
type checkedOperand struct {
	arg any
	pos int
	err error
}

func (c *checkedOperand) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *checkedOperand) Format(s fmt.State, verb rune) {
	if !operandFits(c.arg, verb) {
		c.fail(fmt.Errorf("operand %d: %%%c does not apply to %T", c.pos+1, verb, c.arg))
		return
	}
	defer func() {
		if r := recover(); r != nil {
			if v := reflect.ValueOf(c.arg); v.Kind() == reflect.Pointer && v.IsNil() {
				io.WriteString(s, "<nil>")
				return
			}
			c.fail(fmt.Errorf("operand %d: %T panicked: %v", c.pos+1, c.arg, r))
		}
	}()

	if f, ok := c.arg.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	if verb == 'v' && s.Flag('#') {
		if gs, ok := c.arg.(fmt.GoStringer); ok {
			fmt.Fprintf(s, fmt.FormatString(s, 's'), gs.GoString())
			return
		}
	} else if strings.ContainsRune("v"+stringVerbs, verb) {
		switch x := c.arg.(type) {
		case error:
			fmt.Fprintf(s, fmt.FormatString(s, verb), x.Error())
			return
		case fmt.Stringer:
			fmt.Fprintf(s, fmt.FormatString(s, verb), x.String())
			return
		}
	}
	fmt.Fprintf(s, fmt.FormatString(s, verb), c.arg)
}

// appendFormatted appends the formatted text to dst. A formatting failure
// leaves dst unchanged and returns an ErrEncoding error.
func appendFormatted(dst []byte, format string, args ...any) ([]byte, error) {
	uses, err := scanFormat(format, args)
	if err != nil {
		return dst, fmt.Errorf("%w: format %q: %w", ErrEncoding, format, err)
	}

	// Operands consumed as '*' or by %T/%p are checked up front and passed
	// through untouched; fmt inspects those itself.
	direct := make([]bool, len(args))
	for _, u := range uses {
		if u.verb == 0 || u.verb == 'T' || u.verb == 'p' {
			direct[u.arg] = true
		}
	}
	operands := make([]any, len(args))
	var checked []*checkedOperand
	for i, a := range args {
		if direct[i] {
			operands[i] = a
			continue
		}
		c := &checkedOperand{arg: a, pos: i}
		operands[i] = c
		checked = append(checked, c)
	}
	for _, u := range uses {
		if u.verb != 0 && direct[u.arg] && !operandFits(args[u.arg], u.verb) {
			return dst, fmt.Errorf("%w: format %q: operand %d: %%%c does not apply to %T",
				ErrEncoding, format, u.arg+1, u.verb, args[u.arg])
		}
	}

	start := len(dst)
	dst = fmt.Appendf(dst, format, operands...)
	for _, c := range checked {
		if c.err != nil {
			return dst[:start], fmt.Errorf("%w: format %q: %w", ErrEncoding, format, c.err)
		}
	}
	return dst, nil
}
