package main

import "github.com/yungbote/mentor-backend/cmd/mentorctl/root"

func main() {
	root.Execute()
}
