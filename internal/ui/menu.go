package ui

import (
	"fmt"
	"os"

	"github.com/forest-guardian/landcover-change/internal/log"
)

type menuOption struct {
	title   string
	handler func()
}

// ShowMenu displays the main menu and handles user input
func ShowMenu() {
	menuOptions := []menuOption{
		{"Detect land cover change between the first and last scene", RunChangeDetection},
		{"View the list of available scenes", ListScenes},
		{"View the zones of a zone layer", ListZones},
		{"Exit the application", func() { fmt.Println("Exiting..."); log.Sync(); os.Exit(0) }},
	}

	for {
		fmt.Println("\033[34m===================\033[0m")
		for i, opt := range menuOptions {
			fmt.Printf("\033[34m%d. %s\033[0m\n", i+1, opt.title)
		}

		choice, err := ReadInt("Please enter your choice: ", 1, len(menuOptions))
		if err != nil {
			PrintError(err.Error())
			continue
		}
		menuOptions[choice-1].handler()
	}
}
