//go:build ignore

// Локальный запуск: сервер в фоне и сборка клиента carrent.
//
//	go run launcher.go
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"
)

const healthURL = "http://127.0.0.1:8080/api/user/cars"

func main() {
	fmt.Println("Запуск сервера проката...")

	clientName := "carrent"
	if runtime.GOOS == "windows" {
		clientName = "carrent.exe"
	}

	server := exec.Command("go", "run", "./cmd/server")
	server.Stdout = os.Stdout
	server.Stderr = os.Stderr
	if err := server.Start(); err != nil {
		fmt.Printf("Ошибка запуска сервера: %v\n", err)
		return
	}

	if !waitReady(30 * time.Second) {
		fmt.Println("Сервер не ответил за 30 секунд, смотри лог выше")
	}

	if _, err := os.Stat(clientName); os.IsNotExist(err) {
		fmt.Println("Сборка клиента...")
		build := exec.Command("go", "build", "-o", clientName, "./cmd/carrent")
		build.Stdout = os.Stdout
		build.Stderr = os.Stderr
		if err := build.Run(); err != nil {
			fmt.Printf("Ошибка сборки клиента: %v\n", err)
		}
	}

	fmt.Println("Сервер запущен")
	if runtime.GOOS == "windows" {
		fmt.Println("Данный терминал не закрывай. Открой новый и запускай: .\\carrent.exe --help")
	} else {
		fmt.Println("Данный терминал не закрывай. Открой новый и запускай: ./carrent --help")
	}

	server.Wait()
}

// waitReady опрашивает публичный эндпоинт, пока сервер не начнёт отвечать.
func waitReady(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		res, err := http.Get(healthURL)
		if err == nil {
			res.Body.Close()
			return true
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}
