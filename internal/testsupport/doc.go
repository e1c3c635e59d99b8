// Package testsupport holds fixtures shared by package tests: temp-directory
// configs, generated report workbooks and ledger stores.
package testsupport
