// Package errors provides the coded, printable errors returned by the
// spa command and its configuration loader.
//
// Each error has a code (e.g. "E100") that maps to a short message, an
// optional explanation and an optional hint:
//
//	err := errors.New("E162").
//	    WithLocation("internal/app/main.go", 12, 3).
//	    Wrap(parseErr)
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E162: Cannot parse source file
//	//
//	//   internal/app/main.go:12:3
//	//
//	//     10 │ import (
//	//     11 │     "fmt"
//	//   → 12 │     x
//	//        │   ^
//	//     13 │ )
package errors
