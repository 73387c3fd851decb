package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/urfave/cli"

	"pwioi_backend/internals/configs"
	database "pwioi_backend/internals/databases"
	"pwioi_backend/internals/features/academics"
	cprService "pwioi_backend/internals/features/academics/curriculum/service"
	orgService "pwioi_backend/internals/features/academics/organization/service"
	orgSeed "pwioi_backend/internals/seeds/organization"
)

const cmdTimeout = 2 * time.Minute

var (
	subjectArg string
	fileArg    string
	levelArg   string
	parentArg  string

	subjectFlag = cli.StringFlag{
		Name:        "subject, s",
		Usage:       "subject id (uuid)",
		Destination: &subjectArg,
	}

	importFlags = []cli.Flag{
		subjectFlag,
		cli.StringFlag{
			Name:        "file, f",
			Usage:       "curriculum spreadsheet (.xlsx)",
			Destination: &fileArg,
		},
	}
	seedFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "file, f",
			Usage:       "organization seed file (.json)",
			Destination: &fileArg,
		},
	}
	progressFlags = []cli.Flag{subjectFlag}
	rollupFlags   = []cli.Flag{
		cli.StringFlag{
			Name:        "level, l",
			Usage:       "aggregation level: school, center or division",
			Value:       "school",
			Destination: &levelArg,
		},
		cli.StringFlag{
			Name:        "parent",
			Usage:       "optional parent unit id (center for schools, school for divisions)",
			Destination: &parentArg,
		},
	}
)

func services() *academics.Services {
	db := configs.InitCLIDB()
	return academics.NewServices(db, academics.Options{
		Location:       configs.SchoolLocation(),
		AllowPastSlots: configs.AllowPastSlots,
		MaxRangeDays:   configs.MaxScheduleRangeDays,
	})
}

func migrate(*cli.Context) error {
	return database.Migrate(configs.InitCLIDB())
}

func seed(*cli.Context) error {
	if fileArg == "" {
		return cli.NewExitError("--file is required", 2)
	}
	res, err := orgSeed.SeedFromJSON(configs.InitCLIDB(), fileArg)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func importCurriculum(ctx *cli.Context) error {
	subjectID, err := requireUUID("subject", subjectArg)
	if err != nil {
		return err
	}
	if fileArg == "" {
		return cli.NewExitError("--file is required", 2)
	}
	f, err := os.Open(fileArg)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := cprService.ReadXLSXRows(f)
	if err != nil {
		return err
	}

	c, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()
	res, err := services().Curriculum.Replace(c, subjectID, rows)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func progress(ctx *cli.Context) error {
	subjectID, err := requireUUID("subject", subjectArg)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()
	sp, err := services().Progress.SubjectProgress(c, subjectID)
	if err != nil {
		return err
	}
	return printJSON(sp)
}

func rollup(ctx *cli.Context) error {
	level, err := orgService.ParseUnitLevel(levelArg)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	var parentID *uuid.UUID
	if parentArg != "" {
		id, err := requireUUID("parent", parentArg)
		if err != nil {
			return err
		}
		parentID = &id
	}

	c, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()
	r, err := services().Progress.Rollup(c, level, parentID)
	if err != nil {
		return err
	}
	return printJSON(r)
}

func requireUUID(name, v string) (uuid.UUID, error) {
	if v == "" {
		return uuid.Nil, cli.NewExitError(fmt.Sprintf("--%s is required", name), 2)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, cli.NewExitError(fmt.Sprintf("--%s: invalid uuid %q", name, v), 2)
	}
	return id, nil
}

func printJSON(v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
