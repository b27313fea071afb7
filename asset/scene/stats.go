package scene

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Build a tabular representation of the data texture sections.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Section", "Records", "Offset", "Size"})

	table.Append([]string{"Header", "1", "0", fmtSize(HeaderLen)})
	usedFloats := HeaderLen
	for _, k := range Sections() {
		offset, err := sc.Section(k)
		if err != nil {
			table.Append([]string{k.String(), "-", "-", err.Error()})
			continue
		}
		size, _ := sc.SectionLen(k)
		usedFloats += size

		table.Append([]string{k.String(), sc.recordCount(k), strconv.Itoa(offset), fmtSize(size)})
	}
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Padding", "---", strconv.Itoa(usedFloats), fmtSize(len(sc.Data) - usedFloats)})
	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%dx%d", sc.Width, sc.Height),
		fmt.Sprintf("depth %d", sc.MaxBvhDepth),
		strings.TrimLeft(fmtSize(len(sc.Data)), " "),
	})

	table.Render()
	return buf.String()
}

func (sc *Scene) recordCount(k Section) string {
	switch k {
	case MeshMetaSection:
		return strconv.Itoa(int(sc.Header.MeshCount))
	case GeometrySection:
		return fmt.Sprintf("%d tris", sc.TriangleCount)
	case BvhNodeSection:
		return strconv.Itoa(int(sc.Header.BvhNodeCount))
	case MaterialSection:
		return strconv.Itoa(int(sc.Header.MaterialCount))
	case EmissiveSection:
		return strconv.Itoa(int(sc.Header.EmissiveTriangleCount))
	}
	return "-"
}

// Format the space used by a number of float32 values with the appropriate
// byte/kb/mb unit.
func fmtSize(floats int) string {
	if floats < 0 {
		floats = 0
	}
	totalBytes := float32(floats * 4)

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
