package db

import "context"

type Job = job

func (j Job) Name() string   { return j.name }
func (j Job) DSN() string    { return j.dsn }
func (j Job) Schema() string { return j.schema }
func (j Job) Dir() string    { return j.dir }

func Plan(ctx context.Context, m Migrator, target MigrationTarget) ([]Job, error) {
	return m.(*migrator).plan(ctx, target)
}
