// Package extract turns rendered listing cards and detail pages into event
// records. Cards are flattened to text lines and fields are located either
// through anchored selectors, when the source profile names them, or
// through positional heuristics over the line sequence.
package extract
