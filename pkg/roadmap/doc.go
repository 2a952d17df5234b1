// Package roadmap builds the templated five-milestone roadmap for a company selection.
package roadmap
