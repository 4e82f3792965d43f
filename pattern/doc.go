/*
Package pattern compiles syntax patterns into an immutable AST.

# Pattern Syntax

A pattern describes one textual form of a syntax:

  - text: literal text, matched case-insensitively with surrounding
    whitespace ignored
    Example: "range from"

  - [x]: optional group
    Example: "[the] length of %string%"

  - (a|b): choice between alternatives, first match wins
    Example: "(add|plus)"

  - N:x, 0bNNN:x, 0xNNN:x: parse mark prefix of a choice alternative or of
    an optional group. The mark is XORed into the match result.
    Example: "(1:add|2:remove)"

  - :x: mark shorthand, the mark is a hash of the text of x
    Example: "(:add|:remove)"

  - <regex>: regular expression consumed at the cursor
    Example: "<\d+>"

  - %types%: typed placeholder, see below
    Example: "%number/string%"

  - \c: escapes c
    Example: "2 \> 1"

A top-level "a|b" is a choice as well.

# Placeholders

The body of a placeholder is

	[-][~|*|^][=]type[/type...]

where "-" makes the placeholder nullable, "~" accepts expressions only,
"*" literals only, "^" variables only, and "=" lets the placeholder hold a
conditional boolean. Type names are resolved through a TypeResolver and may
be singular ("number") or plural ("numbers").

# AST Node Types

  - TextNode: literal text
  - OptionalNode: an optional inner node
  - ChoiceNode: ordered alternatives with marks
  - RegexNode: compiled regular expression
  - PlaceholderNode: typed hole
  - SequenceNode: ordered concatenation, never nested

Compiled nodes are read-only and may be matched concurrently. Node.String
renders a node back into pattern syntax such that compiling the rendering
yields a structurally equal AST.

# Usage Example

	c := pattern.NewCompiler(registry, logger)
	node, err := c.Compile("[the] sum of %numbers%")
	if err != nil {
		return err
	}
	for _, w := range c.Warnings() {
		fmt.Println(w)
	}
*/
package pattern
