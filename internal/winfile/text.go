package winfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cmtdata/internal/cmterr"
	"cmtdata/internal/window"
)

// parseText reads the legacy line-oriented window format: a group-count
// header, then per group an observed path line, a synthetic path line, a
// window-count line, and that many `start end [weight]` rows.
func parseText(path string, defaultWeight float64) ([]*Skeleton, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cmterr.Wrap(cmterr.ErrIO, "open window file", path, err)
	}
	defer f.Close()

	r := &lineReader{scanner: bufio.NewScanner(f), path: path}

	header, err := r.next()
	if err != nil {
		return nil, err
	}
	groupCount, err := strconv.Atoi(header)
	if err != nil {
		return nil, cmterr.Wrap(cmterr.ErrFormat, "window file",
			fmt.Sprintf("%s: group-count header %q is not an integer", path, header), err)
	}
	if groupCount < 0 {
		return nil, cmterr.Wrap(cmterr.ErrFormat, "window file",
			fmt.Sprintf("%s: negative group count %d", path, groupCount), nil)
	}
	if groupCount == 0 {
		return nil, nil
	}

	skeletons := make([]*Skeleton, 0, groupCount)
	for g := 0; g < groupCount; g++ {
		obsdPath, err := r.next()
		if err != nil {
			return nil, err
		}
		syntPath, err := r.next()
		if err != nil {
			return nil, err
		}
		countLine, err := r.next()
		if err != nil {
			return nil, err
		}
		windowCount, err := strconv.Atoi(countLine)
		if err != nil {
			return nil, cmterr.Wrap(cmterr.ErrFormat, "window file",
				fmt.Sprintf("%s: group %d: window count %q is not an integer", path, g, countLine), err)
		}
		if windowCount < 0 {
			return nil, cmterr.Wrap(cmterr.ErrFormat, "window file",
				fmt.Sprintf("%s: group %d: negative window count %d", path, g, windowCount), nil)
		}

		windows := make(window.List, 0, windowCount)
		for i := 0; i < windowCount; i++ {
			row, err := r.next()
			if err != nil {
				return nil, err
			}
			w, err := parseWindowRow(row, defaultWeight)
			if err != nil {
				return nil, cmterr.Wrap(cmterr.ErrFormat, "window file",
					fmt.Sprintf("%s: group %d window %d", path, g, i), err)
			}
			windows = append(windows, w)
		}
		skeletons = append(skeletons, &Skeleton{
			Windows:  windows,
			ObsdPath: obsdPath,
			SyntPath: syntPath,
		})
	}
	return skeletons, nil
}

func parseWindowRow(row string, defaultWeight float64) (window.Window, error) {
	fields := strings.Fields(row)
	if len(fields) != 2 && len(fields) != 3 {
		return window.Window{}, cmterr.Wrap(cmterr.ErrFormat, "window row",
			fmt.Sprintf("%q has %d tokens, want 2 or 3", row, len(fields)), nil)
	}
	start, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return window.Window{}, cmterr.Wrap(cmterr.ErrFormat, "window row",
			fmt.Sprintf("start %q is not a number", fields[0]), err)
	}
	end, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return window.Window{}, cmterr.Wrap(cmterr.ErrFormat, "window row",
			fmt.Sprintf("end %q is not a number", fields[1]), err)
	}
	weight := defaultWeight
	if len(fields) == 3 {
		weight, err = strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return window.Window{}, cmterr.Wrap(cmterr.ErrFormat, "window row",
				fmt.Sprintf("weight %q is not a number", fields[2]), err)
		}
	}
	return window.New(start, end, weight)
}

type lineReader struct {
	scanner *bufio.Scanner
	path    string
	line    int
}

func (r *lineReader) next() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", cmterr.Wrap(cmterr.ErrIO, "read window file", r.path, err)
		}
		return "", cmterr.Wrap(cmterr.ErrFormat, "window file",
			fmt.Sprintf("%s: unexpected end of file after line %d", r.path, r.line), nil)
	}
	r.line++
	return strings.TrimSpace(r.scanner.Text()), nil
}
