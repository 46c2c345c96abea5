package main

import "yt-subtitles-loader/cmd"

func main() {
	cmd.Execute()
}
