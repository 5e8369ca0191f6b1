/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

package tracker

import (
	"fmt"
	"strings"

	"github.com/ConfusedSammie/MontrealBot/startgg"
)

// MaxMessageLength is the per-message character budget for announcement
// chunks; Discord embed descriptions cap out slightly above this.
const MaxMessageLength = 4000

// resultGroups accumulates announcement lines grouped by phase then
// pool, preserving the order groups are first seen in.
type resultGroups struct {
	phaseOrder []string
	poolOrder  map[string][]string
	lines      map[string]map[string][]string
}

func newResultGroups() *resultGroups {
	return &resultGroups{
		poolOrder: make(map[string][]string),
		lines:     make(map[string]map[string][]string),
	}
}

func (groups *resultGroups) add(phase, pool, line string) {
	pools, ok := groups.lines[phase]
	if !ok {
		pools = make(map[string][]string)
		groups.lines[phase] = pools
		groups.phaseOrder = append(groups.phaseOrder, phase)
	}
	if _, ok := pools[pool]; !ok {
		groups.poolOrder[phase] = append(groups.poolOrder[phase], pool)
	}
	pools[pool] = append(pools[pool], line)
}

// render flattens the groups into announcement lines with phase and pool
// headers.
func (groups *resultGroups) render() []string {
	var out []string

	for _, phase := range groups.phaseOrder {
		out = append(out, fmt.Sprintf("\n**__%s__**",
			startgg.EscapeMarkdown(strings.ToUpper(phase))))
		for _, pool := range groups.poolOrder[phase] {
			out = append(out, fmt.Sprintf("\n**__Pool %s__**",
				startgg.EscapeMarkdown(pool)))
			out = append(out, groups.lines[phase][pool]...)
		}
	}

	return out
}

// ChunkLines packs lines into messages no longer than maxLen, splitting
// only at line boundaries.
func ChunkLines(lines []string, maxLen int) []string {
	var messages []string
	var buffer strings.Builder

	for _, line := range lines {
		if buffer.Len() > 0 && buffer.Len()+1+len(line) > maxLen {
			messages = append(messages, buffer.String())
			buffer.Reset()
		}
		if buffer.Len() > 0 {
			buffer.WriteByte('\n')
		}
		buffer.WriteString(line)
	}
	if buffer.Len() > 0 {
		messages = append(messages, buffer.String())
	}

	return messages
}
