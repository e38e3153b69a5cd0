// Package shellinfo provides the escape and context commands, which show how
// text would be escaped for a dialect and what is known about the execution
// environment.
package shellinfo
