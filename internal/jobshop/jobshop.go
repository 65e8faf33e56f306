// Package jobshop reads job-shop instances in the classic text format:
//
//	n m
//	machine time machine time ...   (one line per job)
//
// Machines are numbered from 0. Each job visits its machines in line order.
package jobshop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrFormat = errors.New("malformed job-shop data")

// Task is one operation: a machine and its processing time.
type Task struct {
	Machine  int
	Duration int
}

// Instance is a parsed job-shop problem.
type Instance struct {
	Jobs     int
	Machines int
	Tasks    [][]Task
}

// MachineOrder returns the machines job visits, in order.
func (in *Instance) MachineOrder(job int) []int {
	order := make([]int, len(in.Tasks[job]))
	for i, t := range in.Tasks[job] {
		order[i] = t.Machine
	}
	return order
}

// Durations returns the processing times of job, in order.
func (in *Instance) Durations(job int) []int {
	out := make([]int, len(in.Tasks[job]))
	for i, t := range in.Tasks[job] {
		out[i] = t.Duration
	}
	return out
}

// ReadFile parses the instance stored at path.
func ReadFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open job file: %w", err)
	}
	defer f.Close()

	in, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// Parse reads an instance. Blank lines are skipped.
func Parse(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0
	var in *Instance

	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		nums := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: %q is not an integer: %w", lineNo, f, ErrFormat)
			}
			if v < 0 {
				return nil, fmt.Errorf("line %d: negative value %d: %w", lineNo, v, ErrFormat)
			}
			nums[i] = v
		}

		if in == nil {
			if len(nums) != 2 {
				return nil, fmt.Errorf("line %d: header must hold job and machine counts: %w", lineNo, ErrFormat)
			}
			// The header is untrusted; cap the preallocation.
			in = &Instance{Jobs: nums[0], Machines: nums[1], Tasks: make([][]Task, 0, min(nums[0], 1024))}
			continue
		}
		if len(in.Tasks) == in.Jobs {
			return nil, fmt.Errorf("line %d: more job lines than the %d declared: %w", lineNo, in.Jobs, ErrFormat)
		}

		if len(nums)%2 != 0 {
			return nil, fmt.Errorf("line %d: each job line must have an even number of integers: %w", lineNo, ErrFormat)
		}
		tasks := make([]Task, 0, len(nums)/2)
		for i := 0; i < len(nums); i += 2 {
			if nums[i] >= in.Machines {
				return nil, fmt.Errorf("line %d: machine %d out of range [0,%d): %w", lineNo, nums[i], in.Machines, ErrFormat)
			}
			tasks = append(tasks, Task{Machine: nums[i], Duration: nums[i+1]})
		}
		in.Tasks = append(in.Tasks, tasks)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job data: %w", err)
	}

	if in == nil {
		return nil, fmt.Errorf("file is empty: %w", ErrFormat)
	}
	if len(in.Tasks) != in.Jobs {
		return nil, fmt.Errorf("header declares %d jobs, found %d: %w", in.Jobs, len(in.Tasks), ErrFormat)
	}
	return in, nil
}
