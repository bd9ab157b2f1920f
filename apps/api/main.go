package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	echoapi "github.com/SinghVishwajeet09/Student-Smart-Hub/apps/api/echo"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/activity"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/notification"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/core/user"
	appfs "github.com/SinghVishwajeet09/Student-Smart-Hub/fs"
	emailsvc "github.com/SinghVishwajeet09/Student-Smart-Hub/services/email"
	logsvc "github.com/SinghVishwajeet09/Student-Smart-Hub/services/logger"
	portfoliosvc "github.com/SinghVishwajeet09/Student-Smart-Hub/services/portfolio"
	"github.com/SinghVishwajeet09/Student-Smart-Hub/storage/database"
	sqlxrepos "github.com/SinghVishwajeet09/Student-Smart-Hub/storage/database/sqlx"
	"github.com/jmoiron/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatal(err)
	}

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	core.SetTemplateFS(appfs.FS)

	// set up DB
	sqlDB, err := setUpDB(conf)
	if err != nil {
		std.Fatal(err)
	}
	defer func() { _ = sqlDB.Close() }()
	db := sqlx.NewDb(sqlDB, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), usrSvc, mailSvc)
	actSvc := activity.NewService(sqlxrepos.NewActivityRepository(db), notifSvc)
	pfSvc := portfoliosvc.NewService(actSvc, usrSvc, conf, logger)

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)
	activity.RegisterValidators(validate, translator)

	app := echoapi.NewServer(&echoapi.Options{
		Addr:         conf.Server.Address(),
		Conf:         conf,
		Logger:       logger,
		Validate:     validate,
		Translator:   translator,
		UserSvc:      usrSvc,
		ActivitySvc:  actSvc,
		NotifSvc:     notifSvc,
		PortfolioSvc: pfSvc,
	})

	// start API server
	serverErrors := make(chan error, 1)
	go func() { serverErrors <- app.Start() }()

	select {
	case err := <-serverErrors:
		std.Fatal(err)
	case sig := <-app.ShutdownSignal():
		std.Printf("%v: starting shutdown", sig)

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := app.Stop(ctx); err != nil {
			std.Fatalf("could not stop server gracefully: %v", err)
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate("up", db); err != nil {
		return nil, err
	}
	return db, nil
}
