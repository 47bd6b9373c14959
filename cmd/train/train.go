package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Suad0/trading4j-sub002/infra/config"
	"github.com/Suad0/trading4j-sub002/internal/buffer"
	coinmath "github.com/Suad0/trading4j-sub002/internal/math"
	"github.com/Suad0/trading4j-sub002/internal/math/ml"
	"github.com/Suad0/trading4j-sub002/internal/model"
	"github.com/Suad0/trading4j-sub002/internal/storage"
	jsonstore "github.com/Suad0/trading4j-sub002/internal/storage/file/json"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// featureNames is the fixed feature schema fed to the model.
var featureNames = []string{
	"ret_1",
	"ret_5",
	"rsi",
	"volatility",
	"spectrum_1",
	"spectrum_2",
	"spectrum_3",
}

func main() {

	var cfg ml.Config
	config.MustLoad("stox", &cfg)

	schema, err := model.NewSchema(featureNames...)
	if err != nil {
		panic(fmt.Sprintf("could not build schema : %+v", err))
	}
	cfg.InputSize = schema.Size()

	prices := loadPrices()
	log.Info().Int("prices", len(prices)).Msg("loaded price series")

	windows := buildWindows(schema, prices, cfg.Lookback)
	log.Info().Int("windows", len(windows)).Msg("built training windows")

	rnd := rand.New(rand.NewSource(42))
	stox, err := ml.NewStoxLSTM(cfg, rnd)
	if err != nil {
		panic(fmt.Sprintf("could not create model : %+v", err))
	}

	split := len(windows) * 4 / 5
	train, test := windows[:split], windows[split:]

	if ok := stox.Train(train); !ok {
		panic("training failed")
	}

	// benchmark against the forest baseline
	forest := ml.NewForest(100)
	xx, yy := ml.ForestWindows(train)
	importance, err := forest.Train(xx, yy)
	if err != nil {
		panic(fmt.Sprintf("could not train baseline : %+v", err))
	}
	log.Info().Str("importance", fmt.Sprintf("%+v", importance)).Msg("baseline features")

	var stoxHits, forestHits, total int
	for _, w := range test {
		prediction := stox.Predict(w.Features)
		if prediction.Signal.Sign()*w.Target > 0 {
			stoxHits++
		}
		if votes, err := forest.Predict(w.Features[len(w.Features)-1]); err == nil {
			up := len(votes) > 1 && votes[1] > votes[0]
			if up == (w.Target > 0) {
				forestHits++
			}
		}
		total++
	}
	if total > 0 {
		log.Info().
			Str("stox", coinmath.Format(float64(stoxHits)/float64(total))).
			Str("forest", coinmath.Format(float64(forestHits)/float64(total))).
			Int("samples", total).
			Str("metrics", fmt.Sprintf("%+v", stox.Metrics())).
			Msg("out of sample hit rate")
	}

	store := jsonstore.NewStore(filepath.Join(storage.DefaultDir, storage.ModelsDir))
	key := storage.Key{Pair: string(model.BTC), Label: "stox"}
	if ok := stox.Save(store, key); !ok {
		panic("could not save model")
	}
}

// loadPrices walks the history storage for close price series,
// falling back to a synthetic series when no history is available.
func loadPrices() []float64 {

	files := make([]string, 0)
	dir := filepath.Join(storage.DefaultDir, storage.HistoryDir)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil || len(files) == 0 {
		log.Warn().Str("dir", dir).Msg("no history found, generating synthetic series")
		prices := coinmath.Sine(10, 2000, 0.05)
		trend := coinmath.Series(0.01, 2000)
		rnd := rand.New(rand.NewSource(11))
		for i := range prices {
			prices[i] += 100 + trend[i] + rnd.NormFloat64()
		}
		return prices
	}

	sort.Strings(files)
	prices := make([]float64, 0)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("could not read file : %+v", err))
		}
		series := make([]float64, 0)
		if err := json.Unmarshal(data, &series); err != nil {
			panic(fmt.Sprintf("could not unmarshal prices : %+v", err))
		}
		prices = append(prices, series...)
	}
	return prices
}

// buildWindows turns the price series into labeled feature windows.
// The target of each window is the next step return.
func buildWindows(schema *model.Schema, prices []float64, lookback int) []ml.Window {

	// warm up period for the trailing statistics
	const warmUp = 32

	vectors := make([][]float64, 0, len(prices))
	returns := make([]float64, 0, len(prices))

	rsi := &coinmath.RSI{}
	stats := buffer.NewStats()
	recent := buffer.NewBuffer(warmUp)

	for i, price := range prices {
		stats.Push(price)
		recent.Push(price)
		ret1 := 0.0
		ret5 := 0.0
		if i > 0 {
			ret1 = (price - prices[i-1]) / prices[i-1]
		}
		if i > 4 {
			ret5 = (price - prices[i-5]) / prices[i-5]
		}
		returns = append(returns, ret1)
		spectrum := coinmath.FFT(recent.Get()).Top(3)

		features, err := schema.Vector(map[string]float64{
			"ret_1":      ret1,
			"ret_5":      ret5,
			"rsi":        float64(rsi.Add(ret1)) / 100.0,
			"volatility": stats.StDev() / (stats.Avg() + 1e-8),
			"spectrum_1": spectrum[0],
			"spectrum_2": spectrum[1],
			"spectrum_3": spectrum[2],
		})
		if err != nil {
			panic(fmt.Sprintf("could not build features : %+v", err))
		}
		vectors = append(vectors, features)
	}

	windows := make([]ml.Window, 0)
	for i := warmUp; i+lookback < len(vectors); i++ {
		windows = append(windows, ml.Window{
			Features: vectors[i : i+lookback],
			Target:   returns[i+lookback],
		})
	}
	return windows
}
