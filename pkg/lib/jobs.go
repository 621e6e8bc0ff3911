package lib

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/joddb/shopfloor/internal/app/jobimport"
	"github.com/joddb/shopfloor/internal/app/jobordercreate"
	"github.com/joddb/shopfloor/internal/storage/io"
)

// ImportJob imports a YAML job template from path inside fsys.
//
// Returns [ErrAlreadyExists] if a job with the same name exists.
func (c *Client) ImportJob(ctx context.Context, fsys fs.FS, path string) (*Job, error) {
	svc, err := jobimport.NewService(jobimport.ServiceConfig{
		Repository: c.repo,
		Loader:     io.NewJobYAMLRepository(fsys),
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	j, err := svc.Run(ctx, jobimport.Request{Path: path})
	if err != nil {
		return nil, mapError(err)
	}

	res := fromInternalJob(*j)
	return &res, nil
}

// CreateJobOrder creates a job order with its devices and their tasks. The acting
// user must be a planner or an admin.
//
// Returns [ErrAlreadyExists] if the order code is taken, [ErrNotFound] if the job
// doesn't exist, or [ErrNotAllowed] for other roles.
func (c *Client) CreateJobOrder(ctx context.Context, user string, opts CreateJobOrderOpts) (*JobOrder, error) {
	svc, err := jobordercreate.NewService(jobordercreate.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, jobordercreate.Request{
		UserID:       user,
		JobName:      opts.Job,
		OrderCode:    opts.OrderCode,
		Title:        opts.Title,
		Description:  opts.Description,
		TotalDevices: opts.TotalDevices,
		DueDate:      opts.DueDate,
	})
	if err != nil {
		return nil, mapError(err)
	}

	jo := fromInternalJobOrder(res.JobOrder, res.Devices)
	return &jo, nil
}
