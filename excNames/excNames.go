/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package excNames is the fixed mapping from internal error kinds to Java
// exception/error class names, per spec.md §7 "Error handling design".
package excNames

// JVMErrorType is an internal, numeric error kind. exceptions.ThrowEx takes
// one of these and looks up the Java class to instantiate.
type JVMErrorType int

const (
	Unknown JVMErrorType = iota
	ArithmeticException
	ArrayIndexOutOfBoundsException
	ArrayStoreException
	ClassCastException
	ClassFormatError
	ClassNotFoundException
	ClassNotLoadedException
	IllegalArgumentException
	IllegalClassFormatException
	IllegalMonitorStateException
	IncompatibleClassChangeError
	IndexOutOfBoundsException
	InternalException // host-internal invariant violation, not a real Java class
	InterruptedException
	InvalidTypeException // host-internal type-assertion failure, not a real Java class
	NegativeArraySizeException
	NoClassDefFoundError
	NoSuchFieldError
	NoSuchMethodError
	NullPointerException
	OutOfMemoryError
	StackOverflowError
	StringIndexOutOfBoundsException
	UnsatisfiedLinkError
	UnsupportedEncodingException
	UnsupportedOperationException
	VirtualMachineError
)

// JavaClassNames maps each kind to the fully-qualified Java class that gets
// instantiated and thrown. InternalException and InvalidTypeException are
// host-only: they never escape to Java code and map to a VM-internal
// fatal error class used only for the stack trace / log message.
var JavaClassNames = map[JVMErrorType]string{
	ArithmeticException:            "java/lang/ArithmeticException",
	ArrayIndexOutOfBoundsException: "java/lang/ArrayIndexOutOfBoundsException",
	ArrayStoreException:            "java/lang/ArrayStoreException",
	ClassCastException:             "java/lang/ClassCastException",
	ClassFormatError:               "java/lang/ClassFormatError",
	ClassNotFoundException:         "java/lang/ClassNotFoundException",
	ClassNotLoadedException:        "java/lang/NoClassDefFoundError",
	IllegalArgumentException:       "java/lang/IllegalArgumentException",
	IllegalClassFormatException:    "java/lang/instrument/IllegalClassFormatException",
	IllegalMonitorStateException:   "java/lang/IllegalMonitorStateException",
	IncompatibleClassChangeError:   "java/lang/IncompatibleClassChangeError",
	IndexOutOfBoundsException:      "java/lang/IndexOutOfBoundsException",
	InternalException:              "tessera/internal/VMInternalError",
	InterruptedException:           "java/lang/InterruptedException",
	InvalidTypeException:           "tessera/internal/VMInternalError",
	NegativeArraySizeException:     "java/lang/NegativeArraySizeException",
	NoClassDefFoundError:           "java/lang/NoClassDefFoundError",
	NoSuchFieldError:               "java/lang/NoSuchFieldError",
	NoSuchMethodError:              "java/lang/NoSuchMethodError",
	NullPointerException:           "java/lang/NullPointerException",
	OutOfMemoryError:               "java/lang/OutOfMemoryError",
	StackOverflowError:             "java/lang/StackOverflowError",
	StringIndexOutOfBoundsException: "java/lang/StringIndexOutOfBoundsException",
	UnsatisfiedLinkError:           "java/lang/UnsatisfiedLinkError",
	UnsupportedEncodingException:   "java/io/UnsupportedEncodingException",
	UnsupportedOperationException:  "java/lang/UnsupportedOperationException",
	VirtualMachineError:            "java/lang/VirtualMachineError",
}
