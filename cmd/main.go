package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/airbusgeo/godal"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/forest-guardian/landcover-change/internal/log"
	"github.com/forest-guardian/landcover-change/internal/notification"
	"github.com/forest-guardian/landcover-change/internal/properties"
	"github.com/forest-guardian/landcover-change/internal/ui"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func printBanner() {
	figure1 := figure.NewFigure("Landcover", "isometric1", true)
	figure2 := figure.NewFigure("Change", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			location := "Unknown location"
			if ok {
				location = fmt.Sprintf("%s:%d in %s", file, line, runtime.FuncForPC(pc).Name())
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mExiting...\033[0m\n")
			log.Error("panic", zap.Any("recovered", r), zap.String("location", location))

			errMessage := fmt.Sprintf("Landcover change CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, debug.Stack())
			if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
			log.Sync()
			os.Exit(1)
		}
	}()

	printBanner()
	ui.ShowMenu()
}

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("\033[33mNo .env file found, using the process environment\033[0m\n")
		}
	}
	log.Init(properties.LogLevel(), os.Stderr)
	defer log.Sync()

	godal.RegisterAll()
	initCLI()
}
