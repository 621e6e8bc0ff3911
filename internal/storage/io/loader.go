package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/joddb/shopfloor/internal/model"
)

// JobYAMLRepository loads job templates from YAML files.
type JobYAMLRepository struct {
	fs fs.FS
}

// NewJobYAMLRepository creates a new YAML job template repository.
func NewJobYAMLRepository(filesystem fs.FS) *JobYAMLRepository {
	return &JobYAMLRepository{fs: filesystem}
}

// GetJob loads a job template from a YAML file. The returned job and processes have no IDs,
// the caller assigns them when persisting.
func (r *JobYAMLRepository) GetJob(ctx context.Context, path string) (model.Job, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.Job{}, fmt.Errorf("reading job file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Job{}, ctx.Err()
	}

	var j JobTemplate
	if err := yaml.Unmarshal(data, &j); err != nil {
		return model.Job{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := j.validate(); err != nil {
		return model.Job{}, fmt.Errorf("invalid job template: %w", err)
	}

	return j.toModel(), nil
}

// JobTemplate represents the YAML structure of a job template.
//
//	name: A340 harness
//	description: Main cabin harness
//	processes:
//	  - operation: Cut wires
//	    standard_time: 15m
//	  - operation: Visual inspection
//	    standard_time_seconds: 300
//	    type: quality
type JobTemplate struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Processes   []ProcessTemplate `yaml:"processes"`
}

// ProcessTemplate represents the YAML structure of a job template step. Standard time can be
// set in seconds or as a Go duration, not both.
type ProcessTemplate struct {
	Operation           string `yaml:"operation"`
	StandardTimeSeconds int    `yaml:"standard_time_seconds"`
	StandardTime        string `yaml:"standard_time"`
	Type                string `yaml:"type"`
}

func (j JobTemplate) validate() error {
	if j.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(j.Processes) == 0 {
		return fmt.Errorf("at least one process is required")
	}
	for i, p := range j.Processes {
		if err := p.validate(); err != nil {
			return fmt.Errorf("process %d: %w", i+1, err)
		}
	}
	return nil
}

func (p ProcessTemplate) validate() error {
	if p.Operation == "" {
		return fmt.Errorf("operation is required")
	}
	if p.StandardTime != "" && p.StandardTimeSeconds != 0 {
		return fmt.Errorf("only one of standard_time or standard_time_seconds can be set")
	}
	secs, err := p.standardSeconds()
	if err != nil {
		return err
	}
	if secs < 1 {
		return fmt.Errorf("standard time must be at least 1 second, got: %d", secs)
	}
	if p.Type != "" && !model.TaskType(p.Type).Valid() {
		return fmt.Errorf("unknown type %q", p.Type)
	}
	return nil
}

func (p ProcessTemplate) standardSeconds() (int, error) {
	if p.StandardTime == "" {
		return p.StandardTimeSeconds, nil
	}
	d, err := model.ParseStandardTime(p.StandardTime)
	if err != nil {
		return 0, fmt.Errorf("invalid standard_time: %w", err)
	}
	return d, nil
}

func (j JobTemplate) toModel() model.Job {
	job := model.Job{
		Name:        j.Name,
		Description: j.Description,
	}
	for i, p := range j.Processes {
		secs, _ := p.standardSeconds()
		tt := model.TaskType(p.Type)
		if tt == "" {
			tt = model.TaskTypeTechnician
		}
		job.Processes = append(job.Processes, model.Process{
			OperationName:       p.Operation,
			StandardTimeSeconds: secs,
			TaskType:            tt,
			Order:               i + 1,
		})
	}
	return job
}
