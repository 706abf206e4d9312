package lang

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Strings are indexed by UTF-16 code unit, as scripts expect.
func units(s string) []uint16     { return utf16.Encode([]rune(s)) }
func fromUnits(u []uint16) string { return string(utf16.Decode(u)) }
func strLen(s string) int32       { return int32(len(units(s))) }
func outOfRange(i int32) error    { return NewStringIndexOutOfBoundsException(fmt.Sprintf("index %d", i)) }
func stringHash(s string) int32   { return HashCode(s) }
func stringEquals(s string, o any) bool {
	x, ok := o.(string)
	return ok && x == s
}

func charAt(s string, i int32) (uint16, error) {
	u := units(s)
	if i < 0 || int(i) >= len(u) {
		return 0, outOfRange(i)
	}
	return u[i], nil
}

func substring(s string, begin int32) (string, error) {
	return substringRange(s, begin, strLen(s))
}

func substringRange(s string, begin, end int32) (string, error) {
	u := units(s)
	if begin < 0 || end > int32(len(u)) || begin > end {
		return "", NewStringIndexOutOfBoundsException(fmt.Sprintf("begin %d, end %d, length %d", begin, end, len(u)))
	}
	return fromUnits(u[begin:end]), nil
}

func unitIndex(s string, byteIdx int) int32 {
	if byteIdx < 0 {
		return -1
	}
	return strLen(s[:byteIdx])
}

func indexOf(s string, sub any) int32 {
	switch x := sub.(type) {
	case string:
		return unitIndex(s, strings.Index(s, x))
	case uint16:
		return indexOfChar(s, x)
	case *Character:
		return indexOfChar(s, x.Value)
	}
	return -1
}

func indexOfChar(s string, c uint16) int32 {
	for i, u := range units(s) {
		if u == c {
			return int32(i)
		}
	}
	return -1
}

func indexOfFrom(s string, sub string, from int32) int32 {
	if from < 0 {
		from = 0
	}
	rest, err := substring(s, from)
	if err != nil {
		return -1
	}
	i := indexOf(rest, sub)
	if i < 0 {
		return -1
	}
	return i + from
}

func lastIndexOf(s string, sub string) int32 {
	return unitIndex(s, strings.LastIndex(s, sub))
}

func split(s, regex string) ([]string, error) {
	re, err := regexp.Compile(regex)
	if err != nil {
		return nil, NewIllegalArgumentException(err.Error())
	}
	parts := re.Split(s, -1)
	// trailing empty strings are removed
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return []string{}, nil
	}
	return parts, nil
}

func replace(s string, old, repl any) string {
	switch o := old.(type) {
	case string:
		return strings.ReplaceAll(s, o, ToString(repl))
	case uint16, *Character:
		return strings.ReplaceAll(s, ToString(o), ToString(repl))
	}
	return s
}

func replaceAll(s, regex, repl string) (string, error) {
	re, err := regexp.Compile(regex)
	if err != nil {
		return "", NewIllegalArgumentException(err.Error())
	}
	return re.ReplaceAllString(s, repl), nil
}

func compareStrings(a, b string) int32 {
	ua, ub := units(a), units(b)
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return int32(ua[i]) - int32(ub[i])
		}
	}
	return int32(len(ua) - len(ub))
}

func stringExtensions() map[string][]any {
	return map[string][]any{
		"length":           {strLen},
		"charAt":           {charAt},
		"substring":        {substring, substringRange},
		"indexOf":          {indexOf, indexOfFrom},
		"lastIndexOf":      {lastIndexOf},
		"contains":         {func(s, sub string) bool { return strings.Contains(s, sub) }},
		"startsWith":       {func(s, p string) bool { return strings.HasPrefix(s, p) }},
		"endsWith":         {func(s, p string) bool { return strings.HasSuffix(s, p) }},
		"equals":           {stringEquals},
		"equalsIgnoreCase": {func(s, o string) bool { return strings.EqualFold(s, o) }},
		"compareTo":        {compareStrings},
		"hashCode":         {stringHash},
		"isEmpty":          {func(s string) bool { return s == "" }},
		"toUpperCase":      {strings.ToUpper},
		"toLowerCase":      {strings.ToLower},
		"trim":             {func(s string) string { return strings.Trim(s, " \t\n\r\f\v\x00") }},
		"concat":           {func(s, o string) string { return s + o }},
		"replace":          {replace},
		"replaceAll":       {replaceAll},
		"matches": {func(s, regex string) (bool, error) {
			re, err := regexp.Compile("^(?:" + regex + ")$")
			if err != nil {
				return false, NewIllegalArgumentException(err.Error())
			}
			return re.MatchString(s), nil
		}},
		"split":       {split},
		"toCharArray": {units},
		"toString":    {func(s string) string { return s }},
		"intern":      {func(s string) string { return s }},
		"repeat":      {func(s string, n int32) string { return strings.Repeat(s, int(max(n, 0))) }},
	}
}

func stringStatics() map[string][]any {
	return map[string][]any{
		"valueOf": {
			func(v any) string { return ToString(v) },
			func(cs []uint16) string { return fromUnits(cs) },
		},
		"format": {Format},
		"join":   {func(sep string, parts ...string) string { return strings.Join(parts, sep) }},
	}
}

// Format implements String.format for the common conversions: %s, %d, %x,
// %o, %f, %e, %g, %c, %b, %n and %%. Wrappers are unboxed first.
func Format(format string, args ...any) (string, error) {
	var b strings.Builder
	argi := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(format) && strings.IndexByte("-+ 0#.123456789", format[j]) >= 0 {
			j++
		}
		if j >= len(format) {
			return "", NewIllegalArgumentException("unterminated format specifier")
		}
		flags, verb := format[i+1:j], format[j]
		i = j
		switch verb {
		case '%':
			b.WriteByte('%')
			continue
		case 'n':
			b.WriteByte('\n')
			continue
		}
		if argi >= len(args) {
			return "", NewIllegalArgumentException("missing argument for format specifier '%" + string(verb) + "'")
		}
		arg := args[argi]
		argi++
		if u, ok := Unbox(arg); ok {
			arg = u
		}
		switch verb {
		case 's', 'S':
			s := fmt.Sprintf("%"+flags+"s", ToString(arg))
			if verb == 'S' {
				s = strings.ToUpper(s)
			}
			b.WriteString(s)
		case 'd', 'x', 'X', 'o':
			switch arg.(type) {
			case int8, int16, int32, int64:
				fmt.Fprintf(&b, "%"+flags+string(verb), arg)
			default:
				return "", NewIllegalArgumentException(fmt.Sprintf("%%%c != %s", verb, ClassName(arg)))
			}
		case 'f', 'e', 'E', 'g', 'G':
			switch x := arg.(type) {
			case float32:
				fmt.Fprintf(&b, "%"+flags+string(verb), float64(x))
			case float64:
				fmt.Fprintf(&b, "%"+flags+string(verb), x)
			default:
				return "", NewIllegalArgumentException(fmt.Sprintf("%%%c != %s", verb, ClassName(arg)))
			}
		case 'c':
			if ch, ok := arg.(uint16); ok {
				b.WriteString(ToString(ch))
			} else {
				return "", NewIllegalArgumentException("%c != " + ClassName(arg))
			}
		case 'b', 'B':
			if arg == nil {
				b.WriteString("false")
			} else if x, ok := arg.(bool); ok {
				b.WriteString(strconv.FormatBool(x))
			} else {
				b.WriteString("true")
			}
		default:
			return "", NewIllegalArgumentException("unknown format conversion '" + string(verb) + "'")
		}
	}
	return b.String(), nil
}

// StringBuilder is a mutable string buffer.
type StringBuilder struct {
	buf []uint16
}

func NewStringBuilder() *StringBuilder { return &StringBuilder{} }

func NewStringBuilderOf(s string) *StringBuilder { return &StringBuilder{buf: units(s)} }

func (sb *StringBuilder) Append(v any) *StringBuilder {
	if c, ok := v.(*Character); ok {
		sb.buf = append(sb.buf, c.Value)
		return sb
	}
	sb.buf = append(sb.buf, units(ToString(v))...)
	return sb
}

func (sb *StringBuilder) Length() int32    { return int32(len(sb.buf)) }
func (sb *StringBuilder) ToString() string { return fromUnits(sb.buf) }

func (sb *StringBuilder) CharAt(i int32) (uint16, error) {
	if i < 0 || int(i) >= len(sb.buf) {
		return 0, outOfRange(i)
	}
	return sb.buf[i], nil
}

func (sb *StringBuilder) Insert(i int32, v any) (*StringBuilder, error) {
	if i < 0 || int(i) > len(sb.buf) {
		return nil, outOfRange(i)
	}
	ins := units(ToString(v))
	out := make([]uint16, 0, len(sb.buf)+len(ins))
	out = append(out, sb.buf[:i]...)
	out = append(out, ins...)
	sb.buf = append(out, sb.buf[i:]...)
	return sb, nil
}

func (sb *StringBuilder) Reverse() *StringBuilder {
	for i, j := 0, len(sb.buf)-1; i < j; i, j = i+1, j-1 {
		sb.buf[i], sb.buf[j] = sb.buf[j], sb.buf[i]
	}
	return sb
}

func (sb *StringBuilder) SetLength(n int32) error {
	if n < 0 {
		return outOfRange(n)
	}
	for int(n) > len(sb.buf) {
		sb.buf = append(sb.buf, 0)
	}
	sb.buf = sb.buf[:n]
	return nil
}
