package executor

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// RobotDriver injects input through the operating system using robotgo.
type RobotDriver struct{}

// NewRobotDriver creates the OS-level input driver.
func NewRobotDriver() *RobotDriver {
	return &RobotDriver{}
}

func (*RobotDriver) MoveMouse(x, y int) {
	robotgo.MoveSmooth(x, y)
}

func (*RobotDriver) Click(button string) error {
	switch button {
	case "left", "right", "center":
		robotgo.Click(button)
		return nil
	default:
		return fmt.Errorf("unknown mouse button %q", button)
	}
}

func (*RobotDriver) TypeText(text string) error {
	robotgo.TypeStr(text)
	return nil
}

func (*RobotDriver) KeyTap(key string, modifiers ...string) error {
	args := make([]interface{}, len(modifiers))
	for i, m := range modifiers {
		args[i] = m
	}
	return robotgo.KeyTap(key, args...)
}

func (*RobotDriver) Drag(x, y int) error {
	robotgo.DragSmooth(x, y)
	return nil
}

func (*RobotDriver) Scroll(direction string, amount int) error {
	switch direction {
	case "up", "down", "left", "right":
		robotgo.ScrollDir(amount, direction)
		return nil
	default:
		return fmt.Errorf("unknown scroll direction %q", direction)
	}
}

func (*RobotDriver) Position() (int, int) {
	return robotgo.Location()
}
