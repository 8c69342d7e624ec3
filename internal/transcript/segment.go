package transcript

import "strings"

// yearDegreeBlock is a year/degree heading plus every line up to the next
// heading.
type yearDegreeBlock struct {
	year   string
	degree string
	lines  []string
}

// semesterBlock is a semester label plus its unit lines, already repaired.
type semesterBlock struct {
	label string
	units []string
}

// splitYearDegreeBlocks partitions lines at each year/degree heading. Lines
// before the first heading belong to no block and are dropped.
func splitYearDegreeBlocks(lines []string) []yearDegreeBlock {
	var blocks []yearDegreeBlock
	for i := 0; i < len(lines); {
		if !StartsYearDegreeBlock(lines[i]) {
			i++
			continue
		}
		end := i + 1
		for end < len(lines) && !StartsYearDegreeBlock(lines[end]) {
			end++
		}
		year, degree := splitYearDegree(lines[i])
		blocks = append(blocks, yearDegreeBlock{
			year:   year,
			degree: degree,
			lines:  lines[i+1 : end],
		})
		i = end
	}
	return blocks
}

// splitYearDegree separates the year token from the degree name. The
// transcript puts a wide column gap between them; any whitespace run is
// accepted.
func splitYearDegree(line string) (year, degree string) {
	return cutSpace(line)
}

// splitSemesterBlocks finds semester labels inside one year/degree block and
// collects the unit lines under each. The first line that is not a unit line
// closes the block and is scanned again as a possible label.
func splitSemesterBlocks(lines []string) []semesterBlock {
	var blocks []semesterBlock
	for i := 0; i < len(lines); {
		if !StartsSemesterBlock(lines[i]) {
			i++
			continue
		}
		blk := semesterBlock{label: lines[i]}
		j := i + 1
		for j < len(lines) && IsUnitLine(lines[j]) {
			unit, step := repairUnitLine(lines, j)
			blk.units = append(blk.units, unit)
			j += step
		}
		blocks = append(blocks, blk)
		i = j
	}
	return blocks
}

// repairUnitLine returns the logical unit line starting at lines[i] and how
// many physical lines it used. A line without a trailing unit code is joined
// with the next line. A bare unit code is always taken as the continuation,
// even when it begins with grade letters (CRM201, HDS101). Any other next
// line is left alone if it starts a record or block of its own, and so is a
// broken last line; those go to extraction unrepaired.
func repairUnitLine(lines []string, i int) (string, int) {
	line := lines[i]
	if !IsUnitLineBroken(line) || i+1 >= len(lines) {
		return line, 1
	}
	next := lines[i+1]
	if isBareUnitCode(next) {
		return line + next, 2
	}
	if IsUnitLine(next) || StartsSemesterBlock(next) || StartsYearDegreeBlock(next) {
		return line, 1
	}
	return line + next, 2
}

// splitLines breaks filtered text into lines.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}
