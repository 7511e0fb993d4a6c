// Package testutil provides fakes and fixtures shared by dotsync tests.
// Nothing here is used outside _test.go files.
package testutil
