package lang

// Throwable is the base of the exception structs. Concrete exceptions embed
// their parent, so each one is an error carrying its class name.
type Throwable struct {
	class   string
	Message string
	Cause   error
}

func (t *Throwable) base() *Throwable { return t }

func (t *Throwable) Error() string {
	if t.Message == "" {
		return t.class
	}
	return t.class + ": " + t.Message
}

func (t *Throwable) Unwrap() error               { return t.Cause }
func (t *Throwable) GetMessage() string          { return t.Message }
func (t *Throwable) GetLocalizedMessage() string { return t.Message }
func (t *Throwable) GetCause() any               { return unwrapCause(t) }
func (t *Throwable) ToString() string            { return t.Error() }
func (t *Throwable) InitCause(cause error)       { t.Cause = cause }

type throwable interface {
	error
	base() *Throwable
}

func newThrowable[T any, P interface {
	*T
	throwable
}](class, msg string, cause error) P {
	p := P(new(T))
	b := p.base()
	b.class, b.Message, b.Cause = class, msg, cause
	return p
}

type (
	Exception                       struct{ Throwable }
	Error                           struct{ Throwable }
	InterruptedException            struct{ Exception }
	RuntimeException                struct{ Exception }
	ArithmeticException             struct{ RuntimeException }
	NullPointerException            struct{ RuntimeException }
	ClassCastException              struct{ RuntimeException }
	IllegalArgumentException        struct{ RuntimeException }
	NumberFormatException           struct{ IllegalArgumentException }
	IllegalStateException           struct{ RuntimeException }
	UnsupportedOperationException   struct{ RuntimeException }
	IndexOutOfBoundsException       struct{ RuntimeException }
	ArrayIndexOutOfBoundsException  struct{ IndexOutOfBoundsException }
	StringIndexOutOfBoundsException struct{ IndexOutOfBoundsException }
	NoSuchElementException          struct{ RuntimeException }
	ConcurrentModificationException struct{ RuntimeException }
	NegativeArraySizeException      struct{ RuntimeException }

	// EvalException presents an evaluation error to scripts that opted in to catching them.
	EvalException struct {
		Exception
		Err error
	}
)

func (e *EvalException) Unwrap() error { return e.Err }

const (
	classThrowable        = "java.lang.Throwable"
	classException        = "java.lang.Exception"
	classError            = "java.lang.Error"
	classInterrupted      = "java.lang.InterruptedException"
	classRuntime          = "java.lang.RuntimeException"
	classArithmetic       = "java.lang.ArithmeticException"
	classNullPointer      = "java.lang.NullPointerException"
	classClassCast        = "java.lang.ClassCastException"
	classIllegalArgument  = "java.lang.IllegalArgumentException"
	classNumberFormat     = "java.lang.NumberFormatException"
	classIllegalState     = "java.lang.IllegalStateException"
	classUnsupported      = "java.lang.UnsupportedOperationException"
	classIndexOutOfBounds = "java.lang.IndexOutOfBoundsException"
	classArrayIndex       = "java.lang.ArrayIndexOutOfBoundsException"
	classStringIndex      = "java.lang.StringIndexOutOfBoundsException"
	classNoSuchElement    = "java.util.NoSuchElementException"
	classConcurrentMod    = "java.util.ConcurrentModificationException"
	classNegativeArray    = "java.lang.NegativeArraySizeException"
	classEval             = "bsh.EvalException"
)

func NewException(msg string) *Exception {
	return newThrowable[Exception](classException, msg, nil)
}

func NewRuntimeException(msg string) *RuntimeException {
	return newThrowable[RuntimeException](classRuntime, msg, nil)
}

func NewArithmeticException(msg string) *ArithmeticException {
	return newThrowable[ArithmeticException](classArithmetic, msg, nil)
}

func NewNullPointerException(msg string) *NullPointerException {
	return newThrowable[NullPointerException](classNullPointer, msg, nil)
}

func NewClassCastException(msg string) *ClassCastException {
	return newThrowable[ClassCastException](classClassCast, msg, nil)
}

func NewIllegalArgumentException(msg string) *IllegalArgumentException {
	return newThrowable[IllegalArgumentException](classIllegalArgument, msg, nil)
}

func NewNumberFormatException(msg string) *NumberFormatException {
	return newThrowable[NumberFormatException](classNumberFormat, msg, nil)
}

func NewIllegalStateException(msg string) *IllegalStateException {
	return newThrowable[IllegalStateException](classIllegalState, msg, nil)
}

func NewUnsupportedOperationException(msg string) *UnsupportedOperationException {
	return newThrowable[UnsupportedOperationException](classUnsupported, msg, nil)
}

func NewIndexOutOfBoundsException(msg string) *IndexOutOfBoundsException {
	return newThrowable[IndexOutOfBoundsException](classIndexOutOfBounds, msg, nil)
}

func NewArrayIndexOutOfBoundsException(msg string) *ArrayIndexOutOfBoundsException {
	return newThrowable[ArrayIndexOutOfBoundsException](classArrayIndex, msg, nil)
}

func NewStringIndexOutOfBoundsException(msg string) *StringIndexOutOfBoundsException {
	return newThrowable[StringIndexOutOfBoundsException](classStringIndex, msg, nil)
}

func NewNoSuchElementException(msg string) *NoSuchElementException {
	return newThrowable[NoSuchElementException](classNoSuchElement, msg, nil)
}

func NewNegativeArraySizeException(msg string) *NegativeArraySizeException {
	return newThrowable[NegativeArraySizeException](classNegativeArray, msg, nil)
}

// NewEvalException wraps an evaluation error; its message is the error text.
func NewEvalException(err error) *EvalException {
	e := newThrowable[EvalException](classEval, err.Error(), nil)
	e.Err = err
	return e
}

// exceptionClass describes one exception struct for registration.
type exceptionClass struct {
	name  string
	super string
	zero  any
	build func(msg string, cause error) error
}

func exceptionClasses() []exceptionClass {
	return []exceptionClass{
		{classException, classThrowable, &Exception{}, func(m string, c error) error {
			return newThrowable[Exception](classException, m, c)
		}},
		{classError, classThrowable, &Error{}, func(m string, c error) error {
			return newThrowable[Error](classError, m, c)
		}},
		{classInterrupted, classException, &InterruptedException{}, func(m string, c error) error {
			return newThrowable[InterruptedException](classInterrupted, m, c)
		}},
		{classRuntime, classException, &RuntimeException{}, func(m string, c error) error {
			return newThrowable[RuntimeException](classRuntime, m, c)
		}},
		{classArithmetic, classRuntime, &ArithmeticException{}, func(m string, c error) error {
			return newThrowable[ArithmeticException](classArithmetic, m, c)
		}},
		{classNullPointer, classRuntime, &NullPointerException{}, func(m string, c error) error {
			return newThrowable[NullPointerException](classNullPointer, m, c)
		}},
		{classClassCast, classRuntime, &ClassCastException{}, func(m string, c error) error {
			return newThrowable[ClassCastException](classClassCast, m, c)
		}},
		{classIllegalArgument, classRuntime, &IllegalArgumentException{}, func(m string, c error) error {
			return newThrowable[IllegalArgumentException](classIllegalArgument, m, c)
		}},
		{classNumberFormat, classIllegalArgument, &NumberFormatException{}, func(m string, c error) error {
			return newThrowable[NumberFormatException](classNumberFormat, m, c)
		}},
		{classIllegalState, classRuntime, &IllegalStateException{}, func(m string, c error) error {
			return newThrowable[IllegalStateException](classIllegalState, m, c)
		}},
		{classUnsupported, classRuntime, &UnsupportedOperationException{}, func(m string, c error) error {
			return newThrowable[UnsupportedOperationException](classUnsupported, m, c)
		}},
		{classIndexOutOfBounds, classRuntime, &IndexOutOfBoundsException{}, func(m string, c error) error {
			return newThrowable[IndexOutOfBoundsException](classIndexOutOfBounds, m, c)
		}},
		{classArrayIndex, classIndexOutOfBounds, &ArrayIndexOutOfBoundsException{}, func(m string, c error) error {
			return newThrowable[ArrayIndexOutOfBoundsException](classArrayIndex, m, c)
		}},
		{classStringIndex, classIndexOutOfBounds, &StringIndexOutOfBoundsException{}, func(m string, c error) error {
			return newThrowable[StringIndexOutOfBoundsException](classStringIndex, m, c)
		}},
		{classNegativeArray, classRuntime, &NegativeArraySizeException{}, func(m string, c error) error {
			return newThrowable[NegativeArraySizeException](classNegativeArray, m, c)
		}},
		{classEval, classException, &EvalException{}, func(m string, c error) error {
			return newThrowable[EvalException](classEval, m, c)
		}},
	}
}

func utilExceptionClasses() []exceptionClass {
	return []exceptionClass{
		{classNoSuchElement, classRuntime, &NoSuchElementException{}, func(m string, c error) error {
			return newThrowable[NoSuchElementException](classNoSuchElement, m, c)
		}},
		{classConcurrentMod, classRuntime, &ConcurrentModificationException{}, func(m string, c error) error {
			return newThrowable[ConcurrentModificationException](classConcurrentMod, m, c)
		}},
	}
}
