/*
Copyright © 2018 the Flume authors.
This file is part of Flume.

Flume is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Flume is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Flume.  If not, see <http://www.gnu.org/licenses/>.
*/

package flumeutil

import (
	"fmt"
	"os"
	"runtime"

	"github.com/lnashier/viper"
	"github.com/oceanmodel/flume"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

var logger = logrus.StandardLogger()

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Run computes the thickness tendency as specified by the configuration:
// it reads the mesh and field state, runs the configured number of
// tendency-evaluation passes, and writes the result to the output file.
func Run(cfg *viper.Viper) error {
	outputFile, err := checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return err
	}
	if n := cfg.GetInt("NumProcessors"); n > 0 {
		runtime.GOMAXPROCS(n)
	}

	logger.Info("Reading input data...")
	mf, err := os.Open(os.ExpandEnv(cfg.GetString("MeshData")))
	if err != nil {
		return fmt.Errorf("flume: opening mesh data: %v", err)
	}
	defer mf.Close()
	mesh, err := flume.ReadMesh(mf)
	if err != nil {
		return err
	}
	sf, err := os.Open(os.ExpandEnv(cfg.GetString("StateData")))
	if err != nil {
		return fmt.Errorf("flume: opening state data: %v", err)
	}
	defer sf.Close()
	state, err := flume.ReadState(sf, mesh)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"cells":  mesh.NCells,
		"edges":  mesh.NEdges,
		"levels": mesh.NVertLevels,
	}).Info("Mesh loaded")

	adv := flume.NewThicknessAdvection(cfg.GetBool("DisableThicknessAdvection"))
	if !adv.Enabled() {
		logger.Info("Thickness advection is disabled; the tendency will stay zero")
	}

	msgChan := outChan()
	defer close(msgChan)
	d := &flume.Flume{
		Mesh:  mesh,
		State: state,
		RunFuncs: []flume.DomainManipulator{
			flume.ResetTendency(),
			flume.Tendencies(adv.Tendency()),
			flume.EvaluationLimit(cfg.GetInt("NumEvaluations"), msgChan),
		},
	}
	if err := d.Init(); err != nil {
		return err
	}
	if err := d.Run(); err != nil {
		return err
	}

	for k, b := range d.MassBalance() {
		logger.WithFields(logrus.Fields{
			"level":   k,
			"balance": b.Value(),
		}).Debug("Area-integrated tendency [m³/s]")
	}
	min, max := d.TendencyRange()
	logger.WithFields(logrus.Fields{
		"min": min,
		"max": max,
	}).Info("Tendency range [m/s]")

	of, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("flume: creating output file: %v", err)
	}
	defer of.Close()
	if err := flume.WriteTendency(of, mesh, state.ThicknessTend); err != nil {
		return err
	}
	logger.WithField("file", outputFile).Info("Wrote thickness tendency")
	return nil
}

// Grid creates a doubly periodic hexagonal mesh as specified by the
// configuration and writes it to the output file.
func Grid(cfg *viper.Viper) error {
	outputFile, err := checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return err
	}
	mesh, err := flume.HexMesh(
		cast.ToInt(cfg.Get("Grid.Nx")),
		cast.ToInt(cfg.Get("Grid.Ny")),
		cast.ToInt(cfg.Get("Grid.VertLevels")),
		cast.ToFloat64(cfg.Get("Grid.Spacing")),
	)
	if err != nil {
		return err
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("flume: creating mesh file: %v", err)
	}
	defer f.Close()
	if err := flume.WriteMesh(f, mesh); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"cells": mesh.NCells,
		"edges": mesh.NEdges,
		"file":  outputFile,
	}).Info("Wrote hexagonal mesh")
	return nil
}

// Check reads and validates the configured mesh file.
func Check(cfg *viper.Viper) error {
	f, err := os.Open(os.ExpandEnv(cfg.GetString("MeshData")))
	if err != nil {
		return fmt.Errorf("flume: opening mesh data: %v", err)
	}
	defer f.Close()
	mesh, err := flume.ReadMesh(f)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"cells":  mesh.NCells,
		"edges":  mesh.NEdges,
		"levels": mesh.NVertLevels,
	}).Info("Mesh is valid")
	return nil
}
