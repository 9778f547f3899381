//go:build pico_uart

package config

const SelectedDevice = "pico-uart"
