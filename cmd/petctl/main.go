package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pet-progress-api/internal/catalog"
	"pet-progress-api/internal/config"
	"pet-progress-api/internal/hiscores"
	"pet-progress-api/internal/service"
	"pet-progress-api/internal/store"
	"pet-progress-api/internal/temple"
)

var cfgFile string
var dbPath string
var cataloguePath string
var templeBaseURL string
var hiscoresBaseURL string

var rootCmd = &cobra.Command{
	Use:   "petctl",
	Short: "Pet collection progress tools",
	Long:  `Petctl fetches pet ownership from TempleOSRS, computes drop likelihoods, and round-trips exportable progress snapshots.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.petctl.yaml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".petctl")
	}

	viper.SetEnvPrefix("petctl")
	viper.AutomaticEnv()

	godotenv.Load()

	viper.SetDefault("db_path", "pet-progress.db")
	viper.BindEnv("db_path", "DB_PATH")
	viper.BindEnv("catalogue_path", "CATALOGUE_PATH")
	viper.BindEnv("temple_base_url", "TEMPLE_BASE_URL")
	viper.BindEnv("hiscores_base_url", "HISCORES_BASE_URL")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	dbPath = viper.GetString("db_path")
	cataloguePath = viper.GetString("catalogue_path")
	templeBaseURL = viper.GetString("temple_base_url")
	hiscoresBaseURL = viper.GetString("hiscores_base_url")
}

func newService() (*service.Service, func(), error) {
	cat, err := catalog.Load(cataloguePath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalogue: %w", err)
	}
	st, err := store.NewSQLite(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	cfg := config.Config{
		DBPath:          dbPath,
		CataloguePath:   cataloguePath,
		TempleBaseURL:   templeBaseURL,
		HiscoresBaseURL: hiscoresBaseURL,
	}
	svc := service.New(st, temple.New(cat, templeBaseURL), hiscores.New(cat, hiscoresBaseURL), cat, cfg)
	return svc, func() { st.Close() }, nil
}
