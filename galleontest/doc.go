/*
Package galleontest provides shared helpers for tests across the galleon
packages. Nothing in here is meant for production code.
*/
package galleontest
