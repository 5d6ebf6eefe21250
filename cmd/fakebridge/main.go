package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/kr/pretty"

	"github.com/ngerakines/huectl/client/clienttest"
)

func main() {
	address := flag.String("listen", envOrDefault("FAKEBRIDGE_LISTEN", ":8080"), "address to serve the bridge API on")
	flag.Parse()

	bridge := clienttest.NewBridge()
	bridge.Log = os.Stdout
	bridge.AddLight("1", "Hue color lamp", true, 254)
	bridge.AddLight("2", "Hue white lamp", false, 127)

	go func() {
		if err := http.ListenAndServe(*address, bridge); err != nil {
			pretty.Println(err)
			os.Exit(1)
		}
	}()

	fmt.Println("Commands: press, light <id> <name>, users, q")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "q":
			return
		case "press":
			bridge.PressLinkButton()
			fmt.Println("Link button pressed.")
		case "users":
			pretty.Println(bridge.Users())
		case "light":
			if len(fields) < 3 {
				fmt.Println("usage: light <id> <name>")
				continue
			}
			if _, err := strconv.Atoi(fields[1]); err != nil {
				fmt.Println("light id must be a number")
				continue
			}
			bridge.AddLight(fields[1], strings.Join(fields[2:], " "), false, 254)
		default:
			fmt.Println("Unknown command:", fields[0])
		}
	}
}

func envOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
