/*
Package client defines the JSON wire format of the relay submission
endpoint. Numeric fields travel as decimal strings so values survive
clients whose plain number encoding loses precision.
*/
package client
