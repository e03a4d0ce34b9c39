// Package text draws a lane layout for the terminal, in the style of
// git log --graph.
//
//	*  merge
//	|\
//	* |  right
//	| *  left
//	|/
//	*  root
//
// The active event of each row is a star and every other lane at node level
// a bar. Lines with slashes appear only where lanes change column. Lanes are
// coloured with lipgloss using the same palette as the SVG renderer.
package text
